package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hexilee/sgrep/pkg/searcher"
)

type grepFlags struct {
	Indexing   bool
	IgnoreCase bool
}

// newGrepCommand builds the `grep` subcommand: optional reindex, then a
// regex match over already-collected document content.
func newGrepCommand(root *rootFlags) *cobra.Command {
	flags := &grepFlags{}

	cmd := &cobra.Command{
		Use:   "grep [flags] <pattern> [paths...]",
		Short: "Regex grep over already-indexed document content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrep(cmd, root, flags, args)
		},
	}

	cmd.Flags().BoolVarP(&flags.Indexing, "indexing", "I", false, "reindex paths before matching")
	cmd.Flags().BoolVarP(&flags.IgnoreCase, "ignore-case", "i", false, "match case-insensitively")

	return cmd
}

func runGrep(cmd *cobra.Command, root *rootFlags, flags *grepFlags, args []string) error {
	pattern := args[0]

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

	hits, err := s.Grep(pattern, flags.IgnoreCase, patterns)
	if err != nil {
		return fmt.Errorf("grep: %w", err)
	}

	for _, hit := range hits {
		searcher.WriteGrepHit(os.Stdout, hit)
	}

	return nil
}
