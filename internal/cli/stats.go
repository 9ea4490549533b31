package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pcarlton/histx/internal/models"
	"github.com/pcarlton/histx/internal/scanner"
)

func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics about the indexed history",
		RunE:  runStats,
	}
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	entries, err := buildIndex()
	if err != nil {
		return err
	}

	fmt.Println("histx statistics")
	fmt.Println("================")
	fmt.Printf("\nClaude directory: %s\n", scanner.FormatPathWithTilde(cfg.ClaudeDir))
	fmt.Printf("Total entries: %d\n", len(entries))

	if len(entries) == 0 {
		return nil
	}

	var prompts, messages int
	projects := make(map[string]int)
	for _, e := range entries {
		switch e.Type {
		case models.EntryUserPrompt:
			prompts++
		case models.EntryAgentMessage:
			messages++
		}
		if e.ProjectPath != "" {
			projects[e.ProjectPath]++
		}
	}
	fmt.Printf("User prompts: %d\n", prompts)
	fmt.Printf("Agent messages: %d\n", messages)

	// Entries are sorted newest first.
	fmt.Printf("Newest entry: %s\n", entries[0].Timestamp.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Oldest entry: %s\n", entries[len(entries)-1].Timestamp.Local().Format("2006-01-02 15:04"))

	if len(projects) > 0 {
		paths := make([]string, 0, len(projects))
		for p := range projects {
			paths = append(paths, p)
		}
		sort.Slice(paths, func(i, j int) bool { return projects[paths[i]] > projects[paths[j]] })

		fmt.Printf("\nEntries by project (%d projects):\n", len(projects))
		for _, p := range paths {
			fmt.Printf("  %s: %d\n", scanner.FormatPathWithTilde(p), projects[p])
		}
	}

	return nil
}

func entryTypeLabel(t models.EntryType) string {
	switch t {
	case models.EntryUserPrompt:
		return "user"
	case models.EntryAgentMessage:
		return "agent"
	}
	return string(t)
}
