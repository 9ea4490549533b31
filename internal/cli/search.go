package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pcarlton/histx/internal/filter"
	"github.com/pcarlton/histx/internal/scanner"
	"github.com/pcarlton/histx/internal/search"
)

func NewSearchCommand() *cobra.Command {
	var limit int
	var filterStr string
	var full bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search indexed conversation history",
		Long:  `Fuzzy-search the indexed history and print matches, newest first for an empty query.`,
		Example: `  # Search all history
  histx search "tokio runtime panic"

  # Only user prompts from one project
  histx search deploy --filter "project:histx type:user"

  # Everything since a date, no query
  histx search --filter "since:2026-08-01" --limit 50`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(strings.Join(args, " "), filterStr, limit, full)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results (0 = unlimited)")
	cmd.Flags().StringVar(&filterStr, "filter", "", "Filter expression, e.g. 'project:foo type:user since:2026-01-01'")
	cmd.Flags().BoolVar(&full, "full", false, "Print full entry text instead of a one-line snippet")

	return cmd
}

func runSearch(query, filterStr string, limit int, full bool) error {
	expr, err := filter.Parse(filterStr)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	entries, err := buildIndex()
	if err != nil {
		return err
	}

	results := search.NewSearcher(entries).Search(query, expr, limit)
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d result(s):\n\n", len(results))
	for i, r := range results {
		fmt.Printf("%d. [%s] %s", i+1, entryTypeLabel(r.Entry.Type), r.Entry.Timestamp.Local().Format("2006-01-02 15:04"))
		if r.Entry.ProjectPath != "" {
			fmt.Printf(" | %s", scanner.FormatPathWithTilde(r.Entry.ProjectPath))
		}
		fmt.Println()

		if full {
			fmt.Printf("   %s\n", strings.ReplaceAll(r.Entry.Text, "\n", "\n   "))
		} else {
			fmt.Printf("   %s\n", snippet(r.Entry.Text, 100))
		}
		fmt.Println()
	}
	return nil
}

func snippet(text string, max int) string {
	line := strings.ReplaceAll(text, "\n", " ")
	runes := []rune(line)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return line
}
