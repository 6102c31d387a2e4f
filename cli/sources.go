package cli

import (
	"fmt"

	"github.com/ka2n/csvboard/config"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured CSV sources",
	Long:  "Display the configured sources with their titles and resolved file URLs, without contacting them",
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f := a.loader.File(); f != "" {
		fmt.Fprintf(out, "Config: %s\n", f)
	} else {
		fmt.Fprintf(out, "Config: defaults (searched . and %s)\n", config.UserConfigDir())
	}
	fmt.Fprintf(out, "Base URL: %s\n", a.cfg.BaseURL)
	if addr, ok := a.board.Address(); ok {
		fmt.Fprintf(out, "Repository: %s/%s@%s (%s)\n", addr.Owner, addr.Repository, addr.Branch, addr.BasePath)
	} else {
		fmt.Fprintln(out, "Repository: not detected, freshness uses Last-Modified only")
	}
	fmt.Fprintln(out, "Sources:")

	width := 2
	for _, s := range a.cfg.Sources {
		width = max(width, len(s.ID))
	}
	for _, s := range a.cfg.Sources {
		fmt.Fprintf(out, "  %-*s  %-28s  %s\n", width, s.ID, s.DisplayTitle(), a.board.FileURL(s))
	}
	return nil
}
