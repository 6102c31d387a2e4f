package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ka2n/csvboard/api"
	"github.com/mattn/go-isatty"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var (
	noPagerFlag bool
	rawFlag     bool
	limitFlag   int

	showCmd = &cobra.Command{
		Use:   "show <id>",
		Short: "Show one source as a table in the terminal",
		Long: `Download one configured CSV source and display it as a table in a pager.
Use / to search, n and N to move between matches and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
)

func init() {
	showCmd.Flags().BoolVar(&noPagerFlag, "no-pager", false, "Print to stdout instead of opening the pager")
	showCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the markdown table without styling")
	showCmd.Flags().IntVarP(&limitFlag, "limit", "n", 0, "Show at most this many rows (0 for all)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	panel, err := a.board.Panel(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if panel.Err != nil {
		return failure.Wrap(panel.Err)
	}

	doc := panelMarkdown(panel, limitFlag)
	if doc == "" {
		return failure.New(EmptyDataset,
			failure.Message("Source has no columns: "+panel.ID),
		)
	}

	if rawFlag {
		_, err := fmt.Fprint(cmd.OutOrStdout(), doc)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return failure.Wrap(err)
	}
	out, err := renderer.Render(doc)
	if err != nil {
		return failure.Wrap(err)
	}

	if noPagerFlag || !isatty.IsTerminal(os.Stdout.Fd()) {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	return RunPager(panel.Title, out)
}

// panelMarkdown renders a loaded panel as a markdown document.
func panelMarkdown(p api.Panel, limit int) string {
	if p.Table == nil {
		return ""
	}
	table := p.Table.Markdown(limit)
	if table == "" {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "Last updated: **%s** · Fetched: %s · Source: <%s>\n\n", p.LastUpdated, p.FetchedAt, p.URL)
	b.WriteString(table)
	if limit > 0 && len(p.Table.Rows) > limit {
		fmt.Fprintf(&b, "\n_%d of %d rows shown_\n", limit, len(p.Table.Rows))
	}
	return b.String()
}
