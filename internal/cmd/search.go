package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nixlim/jarviz/internal/history"
	"github.com/nixlim/jarviz/internal/registry"
	"github.com/nixlim/jarviz/internal/settings"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the launcher's tools",
	Long: `Search the registered tools the way the Ctrl+K palette does. A whole-query
match on a tool's title or keywords ranks above partial word matches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum results (default: display.palette_limit)")
}

// toolRegistry registers every launcher page's actions.
func toolRegistry() *registry.Registry {
	a := newApp(cfg, history.NewMemoryStore(), false, logger)
	reg := registry.New()
	for _, p := range a.pages(settings.Defaults(), "") {
		p.RegisterActions(reg)
	}
	return reg
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Display.PaletteLimit
	}

	results := toolRegistry().Search(strings.Join(args, " "))
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching tools.")
		return nil
	}
	if len(results) > limit {
		results = results[:limit]
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, a := range results {
		fmt.Fprintf(tw, "%s\t%s\n", a.Title, a.PageID)
	}
	return tw.Flush()
}
