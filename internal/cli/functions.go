package cli

import (
	"fmt"
	"strings"

	"github.com/botirk38/simfunc/activation"
	"github.com/botirk38/simfunc/similarity"
	"github.com/spf13/cobra"
)

type functionsOutput struct {
	Similarity  []string `json:"similarity"`
	Activations []string `json:"activations"`
}

func newFunctionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List registered similarity functions and activations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := functionsOutput{
				Similarity:  similarity.Names(),
				Activations: activation.Names(),
			}
			text := fmt.Sprintf("similarity:  %s\nactivations: %s",
				strings.Join(out.Similarity, ", "), strings.Join(out.Activations, ", "))
			return a.emit(cmd.OutOrStdout(), out, text)
		},
	}
}
