package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ka2n/csvboard/api"
	"github.com/ka2n/csvboard/config"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	jsonFlag bool

	freshnessCmd = &cobra.Command{
		Use:   "freshness [id...]",
		Short: "Print when each source last changed",
		Long: `Print the "last updated" label of each configured source, or only of the
given source ids. The label comes from the repository commit history when the
base URL points into a repository, otherwise from the file's Last-Modified
header, and is "unknown" when neither is available.`,
		RunE: runFreshness,
	}
)

func init() {
	freshnessCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(freshnessCmd)
}

type freshnessLine struct {
	ID          string `json:"id"`
	LastUpdated string `json:"last_updated"`
	Signal      string `json:"signal"`
	URL         string `json:"url"`
}

func runFreshness(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	board := a.board
	if len(args) > 0 {
		sources := make([]config.Source, 0, len(args))
		for _, id := range lo.Uniq(args) {
			s, err := board.Source(id)
			if err != nil {
				return err
			}
			sources = append(sources, s)
		}
		board = board.WithSources(sources)
	}

	lines := lo.Map(board.Labels(cmd.Context()), func(p api.Panel, _ int) freshnessLine {
		return freshnessLine{ID: p.ID, LastUpdated: p.LastUpdated, Signal: string(p.Tier), URL: p.URL}
	})

	out := cmd.OutOrStdout()
	if jsonFlag {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(lines)
	}

	width := 2
	for _, l := range lines {
		width = max(width, len(l.ID))
	}
	for _, l := range lines {
		fmt.Fprintf(out, "  %-*s  %-20s  %-15s  %s\n", width, l.ID, l.LastUpdated, l.Signal, l.URL)
	}
	return nil
}
