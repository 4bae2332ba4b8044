package ui

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chousei/internal/approval"
)

func (a *App) listCmd() *cobra.Command {
	var (
		verbose bool
		noColor bool
		shared  bool
	)

	cmd := &cobra.Command{
		Use:     "list [schedule]",
		Aliases: []string{"show"},
		Short:   "List the slots of a schedule",
		Long: `List every slot of a schedule grouped by day, with your vote and
the OK count. Slots marked ★ have reached quorum and would be kept by share.

The first column is your vote: ✓ OK, ✗ NG, ○ not answered.`,
		Example: `  chousei list 3f1c...
  chousei list "https://chousei.app/?id=3f1c...&events=..." -v
  chousei list 3f1c... --shared`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				DisableColor()
			}

			sess, res, err := a.open(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			slots := sess.Editor().Slots()
			if shared {
				slots = approval.FilterForShare(slots, sess.Actor(), sess.Known())
			}

			title := sess.Title()
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(w, "=== %s ===\n", formatHeader(title))
			fmt.Fprintf(w, "%s\n", formatMuted(fmt.Sprintf("id %s · %s · from %s", sess.ID(), sess.Editor().Role(), res.Source)))
			if known := sess.Known(); len(known) > 0 {
				fmt.Fprintf(w, "%s\n", formatMuted("respondents: "+strings.Join(known, ", ")))
			}
			if res.DecodeErr != nil {
				fmt.Fprintf(w, "%s\n", formatNG("link payload ignored: "+res.DecodeErr.Error()))
			}
			fmt.Fprintln(w)

			if len(slots) == 0 {
				fmt.Fprintln(w, "No slots proposed yet.")
				return nil
			}

			PrintSlots(w, slots, PrintOpts{
				Actor:   sess.Actor(),
				Known:   sess.Known(),
				Verbose: verbose,
			})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show notes and voter names")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	cmd.Flags().BoolVar(&shared, "shared", false, "Only show the slots share would keep")
	return cmd
}
