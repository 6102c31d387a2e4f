package cli

import (
	"context"
	"fmt"

	"github.com/ka2n/csvboard/api"
	"github.com/ka2n/csvboard/config"
	"github.com/ka2n/csvboard/log"
	"github.com/ka2n/csvboard/mcp"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	configFlag string

	// Root command
	rootCmd = &cobra.Command{
		Use:           "csvboard",
		Short:         "Serve remote CSV files as a tabbed dashboard",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `csvboard fetches CSV files hosted under a base URL and shows them as
sortable, filterable tables, one tab per file, each labelled with when the
file last changed.

Without a subcommand it starts the web dashboard (same as "csvboard serve").
Configuration comes from csvboard.yaml, CSVBOARD_* environment variables and
the RAW_BASE / GITHUB_TOKEN variables.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print detailed version information about csvboard",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "csvboard version %s\n", api.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", api.VersionCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", api.VersionDate)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to config file (default ./csvboard.yaml if present)")
	addServeFlags(rootCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcp.Command(func() (*api.Board, error) {
		a, err := newApp()
		if err != nil {
			return nil, err
		}
		return a.board, nil
	}))
}

// Run executes the main CLI functionality
func Run() error {
	return rootCmd.ExecuteContext(context.Background())
}

// app bundles what every command needs.
type app struct {
	loader *config.Loader
	cfg    config.Config
	board  *api.Board
}

func newApp() (*app, error) {
	loader, err := config.NewLoader(configFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := loader.Config()
	if err != nil {
		return nil, err
	}
	if f := loader.File(); f != "" {
		log.Debug("Using config file", "file", f)
	}

	client := log.NewHTTPClient()
	resolver, err := api.NewResolver(cfg, client)
	if err != nil {
		return nil, err
	}
	return &app{
		loader: loader,
		cfg:    cfg,
		board:  api.NewBoard(cfg, resolver, client),
	}, nil
}
