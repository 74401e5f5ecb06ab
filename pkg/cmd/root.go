// Package cmd wires the sgrep CLI: cobra command tree, logging, the data
// directory, and the collector/index/searcher composition root.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Hexilee/sgrep/pkg/collect"
	"github.com/Hexilee/sgrep/pkg/index"
	"github.com/Hexilee/sgrep/pkg/searcher"
)

// BuildInfo holds build metadata injected at compile time.
type BuildInfo struct {
	Version string
	AppName string
}

type rootFlags struct {
	Verbose int    `mapstructure:"verbose"`
	DataDir string `mapstructure:"data_dir"`
}

// NewRootCommand builds the sgrep command tree: the persistent -v/--data-dir
// flags, and the index/search/grep subcommands.
func NewRootCommand(build BuildInfo) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           build.AppName,
		Short:         "Local full-text search and regex grep over heterogeneous documents",
		Version:       build.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initLogger(flags.Verbose)
		},
	}

	root.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")
	root.PersistentFlags().StringVar(&flags.DataDir, "data-dir", "", "sgrep data directory (default: sgrep under the user data directory)")

	if err := viper.BindPFlag("data_dir", root.PersistentFlags().Lookup("data-dir")); err != nil {
		panic(fmt.Sprintf("bind data-dir flag: %v", err))
	}

	viper.SetEnvPrefix("sgrep")
	viper.AutomaticEnv()

	root.AddCommand(
		newIndexCommand(flags),
		newSearchCommand(flags),
		newGrepCommand(flags),
	)

	return root
}

// buildRegistry returns the collector registry in dispatch order: format
// collectors claim their extensions before the UTF-8 text collector's
// content-sniffing fallback gets a chance.
func buildRegistry() (*collect.Registry, error) {
	reg, err := collect.NewBuilder().
		Register(collect.NewPDF()).
		Register(collect.NewDocx()).
		Register(collect.NewSpreadsheet()).
		Register(collect.NewText()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build collector registry: %w", err)
	}

	return reg, nil
}

// openStore resolves the data directory (the --data-dir flag, else the
// SGREP_DATA_DIR environment variable, else the default; created if absent)
// and opens the index store within it.
func openStore(flags *rootFlags) (*index.Store, error) {
	configured := flags.DataDir
	if configured == "" {
		configured = viper.GetString("data_dir")
	}

	dir, err := dataDir(configured)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}

	store, err := index.Open(indexDir(dir))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	return store, nil
}

// newIndexer opens the store and wires it to a fresh collector registry.
func newIndexer(flags *rootFlags) (*index.Store, *index.Indexer, error) {
	store, err := openStore(flags)
	if err != nil {
		return nil, nil, err
	}

	reg, err := buildRegistry()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	return store, index.New(store, reg), nil
}

// newSearcher opens the store and wires a Searcher over it.
func newSearcher(flags *rootFlags) (*index.Store, *searcher.Searcher, error) {
	store, err := openStore(flags)
	if err != nil {
		return nil, nil, err
	}

	return store, searcher.New(store), nil
}

// indexRegistry reindexes patterns against an already-open store, for the
// `--indexing` flag shared by search and grep.
func indexRegistry(cmd *cobra.Command, store *index.Store, reg *collect.Registry, patterns []string) (index.Result, error) {
	paths, err := collect.Enumerate(patterns)
	if err != nil {
		return index.Result{}, fmt.Errorf("expand paths: %w", err)
	}

	ix := index.New(store, reg)

	result, err := ix.Index(cmd.Context(), paths)
	if err != nil {
		return index.Result{}, fmt.Errorf("index: %w", err)
	}

	slog.InfoContext(cmd.Context(), "indexed paths", "indexed", result.Indexed, "skipped", result.Skipped)

	return result, nil
}
