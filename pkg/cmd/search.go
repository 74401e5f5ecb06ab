package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hexilee/sgrep/pkg/searcher"
)

type searchFlags struct {
	Limit    int
	Indexing bool
}

// newSearchCommand builds the `search` subcommand: optional reindex, then a
// ranked keyword search with highlighted snippets.
func newSearchCommand(root *rootFlags) *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search [flags] <query> [paths...]",
		Short: "Ranked keyword search with highlighted snippets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, root, flags, args)
		},
	}

	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", 5, "maximum number of results")
	cmd.Flags().BoolVarP(&flags.Indexing, "indexing", "I", false, "reindex paths before searching")

	return cmd
}

func runSearch(cmd *cobra.Command, root *rootFlags, flags *searchFlags, args []string) error {
	query := args[0]

	patterns := args[1:]
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}

	store, s, err := newSearcher(root)
	if err != nil {
		return err
	}
	defer store.Close()

	if flags.Indexing {
		reg, err := buildRegistry()
		if err != nil {
			return err
		}

		if _, err := indexRegistry(cmd, store, reg, patterns); err != nil {
			return err
		}
	}

	hits, err := s.Search(cmd.Context(), query, flags.Limit, patterns)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	for _, hit := range hits {
		searcher.WriteHit(os.Stdout, hit)
	}

	return nil
}
