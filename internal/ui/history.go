package ui

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chousei/internal/payload"
	"github.com/javiermolinar/chousei/internal/session"
	"github.com/javiermolinar/chousei/internal/store"
)

func (a *App) historyCmd() *cobra.Command {
	var (
		answered bool
		links    bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List schedules kept on this machine",
		Long: `List the schedules you created, newest share first.
With --answered, list the schedules you have voted on instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.ensureRepo(); err != nil {
				return err
			}

			var (
				entries []store.Entry
				err     error
			)
			if answered {
				actor, aerr := a.actor(ctx)
				if aerr != nil {
					return aerr
				}
				if actor == "" {
					return friendly(session.ErrNameRequired)
				}
				entries, err = a.repo.Answered(ctx, actor)
			} else {
				entries, err = a.repo.History(ctx)
			}
			if err != nil {
				return fmt.Errorf("listing history: %w", err)
			}

			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(w, "No schedules yet.")
				return nil
			}

			titleWidth := 0
			for _, e := range entries {
				titleWidth = max(titleWidth, len(e.Title))
			}
			for _, e := range entries {
				fmt.Fprintf(w, "  %s  %-*s  %s  %s\n",
					formatMuted(e.SharedAt.Local().Format("2006-01-02 15:04")),
					titleWidth, e.Title,
					formatMuted(fmt.Sprintf("%d slots", e.SlotCount)),
					e.ID,
				)
				if links {
					home, err := payload.HomeLink(a.config.Share.BaseURL, e.ID, e.Title)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "    %s\n", formatLink(home))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&answered, "answered", false, "List schedules you voted on")
	cmd.Flags().BoolVar(&links, "links", false, "Print a home link under each entry")
	return cmd
}

func (a *App) forgetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "forget [schedule]",
		Short: "Remove a schedule and its votes from this machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.ensureRepo(); err != nil {
				return err
			}
			id := strings.TrimSpace(args[0])
			if !yes && !(prompter{r: bufio.NewReader(cmd.InOrStdin()), w: cmd.OutOrStdout()}).yesNo(fmt.Sprintf("Forget schedule %s?", id)) {
				return nil
			}
			if err := a.repo.Forget(ctx, id); err != nil {
				return fmt.Errorf("forgetting schedule: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot schedule %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
