package ui

import (
	"github.com/spf13/cobra"
)

func (a *App) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [link or schedule]",
		Short: "Open a schedule in the week grid",
		Long: `Open a share link, an answer link or a schedule id in the
interactive week grid. Opening a link as its creator stores the link's
slots as the local history.`,
		Example: `  chousei open "https://chousei.app/?id=3f1c...&events=...&responders=Bob"
  chousei open 3f1c...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context(), args[0])
		},
	}
}
