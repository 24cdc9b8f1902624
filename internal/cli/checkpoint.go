package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/botirk38/simfunc/similarity"
	"github.com/botirk38/simfunc/types"
	"github.com/spf13/cobra"
)

type checkpointOutput struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	Weights   int            `json:"weights"`
	Bias      float64        `json:"bias"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func summarize(cp types.Checkpoint) checkpointOutput {
	return checkpointOutput{
		ID:        cp.ID.String(),
		Name:      cp.Name,
		Config:    cp.Config,
		Weights:   len(cp.Weights),
		Bias:      cp.Bias,
		UpdatedAt: cp.UpdatedAt,
	}
}

func newCheckpointCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage stored checkpoints",
		Long: `Manage checkpoints in the store configured by --config (a SQLite file
named simfunc.db by default).

Subcommands:
  init     - Store a freshly initialized function from the config
  list     - List stored checkpoints
  show     - Show a checkpoint
  delete   - Delete a checkpoint`,
	}

	cmd.AddCommand(newCheckpointInitCmd(a))
	cmd.AddCommand(newCheckpointListCmd(a))
	cmd.AddCommand(newCheckpointShowCmd(a))
	cmd.AddCommand(newCheckpointDeleteCmd(a))
	return cmd
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(fn func(types.CheckpointStore) error) error {
	store, err := a.config.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

func newCheckpointInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Store a freshly initialized function from the config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			fn, err := similarity.FromParams(a.config.similarity.Duplicate())
			if err != nil {
				return err
			}
			cp, err := similarity.Snapshot(name, fn)
			if err != nil {
				return err
			}

			return a.withStore(func(store types.CheckpointStore) error {
				exists, err := store.Contains(cmd.Context(), name)
				if err != nil {
					return err
				}
				if exists && !force {
					return fmt.Errorf("checkpoint %s already exists, use --force to replace it", name)
				}
				if err := store.Save(cmd.Context(), cp); err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), summarize(cp), cp.ID.String())
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing checkpoint")
	return cmd
}

func newCheckpointListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store types.CheckpointStore) error {
				names, err := store.Names(cmd.Context())
				if err != nil {
					return err
				}
				if names == nil {
					names = []string{}
				}
				return a.emit(cmd.OutOrStdout(), names, strings.Join(names, "\n"))
			})
		},
	}
}

func newCheckpointShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store types.CheckpointStore) error {
				cp, found, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("checkpoint %s not found", args[0])
				}

				out := summarize(cp)
				text := fmt.Sprintf("name:     %s\nid:       %s\ntype:     %v\nweights:  %d\nbias:     %g\nupdated:  %s",
					out.Name, out.ID, out.Config["type"], out.Weights, out.Bias, out.UpdatedAt.Format(time.RFC3339))
				return a.emit(cmd.OutOrStdout(), out, text)
			})
		},
	}
}

func newCheckpointDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store types.CheckpointStore) error {
				return store.Delete(cmd.Context(), args[0])
			})
		},
	}
}
