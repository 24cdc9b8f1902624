package cli

import (
	"fmt"

	"github.com/botirk38/simfunc/combination"
	"github.com/botirk38/simfunc/similarity"
	"github.com/spf13/cobra"
)

type dimOutput struct {
	Combination string `json:"combination"`
	Dim1        int    `json:"tensor_1_dim"`
	Dim2        int    `json:"tensor_2_dim"`
	Dim         int    `json:"dim"`
}

func newDimCmd(a *app) *cobra.Command {
	var (
		spec       string
		dim1, dim2 int
	)

	cmd := &cobra.Command{
		Use:   "dim",
		Short: "Print the width of a combined vector",
		Long: `Print the width of the vector a combination produces.

The combination and dims come from the flags, or from the similarity section
of --config when it describes a linear similarity.

Examples:
  simfunc dim --combination x,y,x*y --dim1 300 --dim2 300
  simfunc dim --config model.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := dimOutput{Combination: spec, Dim1: dim1, Dim2: dim2}

			if a.configPath != "" && !cmd.Flags().Changed("combination") {
				fn, err := similarity.FromParams(a.config.similarity.Duplicate())
				if err != nil {
					return err
				}
				linear, ok := fn.(*similarity.LinearSimilarity)
				if !ok {
					return fmt.Errorf("configured similarity %T has no combined dimension", fn)
				}
				out.Combination = linear.Combination().String()
				out.Dim1, out.Dim2 = linear.Dims()
				out.Dim = linear.CombinedDim()
				return a.emit(cmd.OutOrStdout(), out, fmt.Sprint(out.Dim))
			}

			c, err := combination.Parse(spec)
			if err != nil {
				return err
			}
			if out.Dim, err = c.Dim(dim1, dim2); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), out, fmt.Sprint(out.Dim))
		},
	}

	cmd.Flags().StringVar(&spec, "combination", combination.DefaultSpec, "Comma-separated combination, e.g. x,y,x*y")
	cmd.Flags().IntVar(&dim1, "dim1", 0, "Width of the first input")
	cmd.Flags().IntVar(&dim2, "dim2", 0, "Width of the second input")
	return cmd
}
