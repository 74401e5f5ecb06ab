package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Hexilee/sgrep/pkg/collect"
)

type indexFlags struct {
	Delete    bool
	DeleteAll bool
}

// newIndexCommand builds the `index` subcommand: add/refresh, remove, or
// clear paths from the persistent store.
func newIndexCommand(root *rootFlags) *cobra.Command {
	flags := &indexFlags{}

	cmd := &cobra.Command{
		Use:   "index [paths...]",
		Short: "Add, refresh, or remove paths from the index",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, root, flags, args)
		},
	}

	cmd.Flags().BoolVarP(&flags.Delete, "delete", "d", false, "remove the given paths from the index instead of adding them")
	cmd.Flags().BoolVarP(&flags.DeleteAll, "delete-all", "D", false, "clear the entire index, ignoring any given paths")

	return cmd
}

func runIndex(cmd *cobra.Command, root *rootFlags, flags *indexFlags, args []string) error {
	store, ix, err := newIndexer(root)
	if err != nil {
		return err
	}
	defer store.Close()

	if flags.DeleteAll {
		if err := ix.RemoveAll(); err != nil {
			return fmt.Errorf("remove all: %w", err)
		}

		slog.InfoContext(cmd.Context(), "cleared index")

		return nil
	}

	patterns := args
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}

	paths, err := collect.Enumerate(patterns)
	if err != nil {
		return fmt.Errorf("expand paths: %w", err)
	}

	if flags.Delete {
		removed, err := ix.Remove(paths)
		if err != nil {
			return fmt.Errorf("remove: %w", err)
		}

		slog.InfoContext(cmd.Context(), "removed paths from index", "removed", removed)

		return nil
	}

	result, err := ix.Index(cmd.Context(), paths)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	slog.InfoContext(cmd.Context(), "indexed paths", "indexed", result.Indexed, "skipped", result.Skipped)

	return nil
}
