package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chousei/internal/editor"
	"github.com/javiermolinar/chousei/internal/session"
)

func (a *App) newCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new [title]",
		Short: "Create a new schedule",
		Long: `Create an empty schedule with a title and record you as its creator.

Example:
  chousei new "Team Sync" --name=Carol`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := a.open(ctx, "", true)
			if err != nil {
				return err
			}
			if sess.Actor() == "" {
				return friendly(session.ErrNameRequired)
			}
			if err := sess.SetTitle(ctx, args[0]); err != nil {
				return err
			}
			if err := sess.Save(ctx); err != nil {
				return fmt.Errorf("saving schedule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created schedule %s: %s\n", sess.ID(), sess.Title())
			return nil
		},
	}
}

func (a *App) addCmd() *cobra.Command {
	var (
		date  string
		start string
		end   string
		color string
		notes string
	)

	cmd := &cobra.Command{
		Use:   "add [schedule] [title]",
		Short: "Propose a time slot",
		Long: `Add a candidate slot to a schedule you created, or to a shared link
that has no slots yet.

The schedule can be an id, a share link or its query string.

Example:
  chousei add 3f1c... "Standup" --date=tomorrow --start=09:00 --end=09:30 --color=green`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := a.open(ctx, args[0], false)
			if err != nil {
				return err
			}

			from, to, err := parseInterval(date, start, end, a.now())
			if err != nil {
				return err
			}
			c, err := parseColor(color)
			if err != nil {
				return err
			}

			s, err := sess.Editor().CommitSlot(editor.Draft{
				Title: args[1],
				Start: from,
				End:   to,
				Color: c,
				Notes: notes,
			})
			if err != nil {
				return friendly(err)
			}
			if err := sess.Save(ctx); err != nil {
				return fmt.Errorf("saving schedule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added slot %s: %s %s %s-%s\n",
				shortID(s.ID),
				s.Title,
				s.Start.Format("2006-01-02"),
				s.Start.Format("15:04"),
				s.End.Format("15:04"),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday..., default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, required)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM, default: one hour after start)")
	cmd.Flags().StringVar(&color, "color", "", "Color: blue, red, yellow, green, teal or a palette hex")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")

	_ = cmd.MarkFlagRequired("start")

	return cmd
}
