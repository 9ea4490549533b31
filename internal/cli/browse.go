package cli

import (
	"github.com/spf13/cobra"

	"github.com/pcarlton/histx/internal/models"
	"github.com/pcarlton/histx/internal/tui"
)

func NewBrowseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse history interactively",
		Long:  `Open the interactive browser. The index refreshes automatically while Claude Code writes new history.`,
		RunE:  runBrowse,
	}
	return cmd
}

func runBrowse(cmd *cobra.Command, args []string) error {
	entries, err := buildIndex()
	if err != nil {
		return err
	}

	rebuild := func() ([]models.Entry, error) {
		return buildIndex()
	}
	return tui.NewBrowser(entries, rebuild, cfg.ClaudeDir).Run()
}
