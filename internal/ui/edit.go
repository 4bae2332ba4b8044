package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/chousei/internal/dateutil"
	"github.com/javiermolinar/chousei/internal/slot"
)

func (a *App) editCmd() *cobra.Command {
	var (
		title string
		date  string
		start string
		end   string
		color string
		notes string
	)

	cmd := &cobra.Command{
		Use:   "edit [schedule] [slot]",
		Short: "Change a slot",
		Long: `Change the title, time, color or notes of a slot.
Only the flags given are changed. The slot can be given by an id prefix.

Example:
  chousei edit 3f1c... 9a2b --title="Standup (short)" --end=09:15`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := a.open(ctx, args[0], false)
			if err != nil {
				return err
			}
			ed := sess.Editor()
			s, err := findSlot(ed.Slots(), args[1])
			if err != nil {
				return err
			}
			d, err := ed.EditDraft(s.ID)
			if err != nil {
				return friendly(err)
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				d.Title = title
			}
			if flags.Changed("notes") {
				d.Notes = notes
			}
			if flags.Changed("color") {
				if d.Color, err = parseColor(color); err != nil {
					return err
				}
			}
			if flags.Changed("date") || flags.Changed("start") || flags.Changed("end") {
				duration := d.End.Sub(d.Start)
				if !flags.Changed("date") {
					date = d.Start.Format("2006-01-02")
				}
				if !flags.Changed("start") {
					start = dateutil.FormatClock(dateutil.MinutesOfDay(d.Start))
				}
				if !flags.Changed("end") {
					end = ""
				}
				from, to, err := parseInterval(date, start, end, a.now())
				if err != nil {
					return err
				}
				if end == "" {
					to = from.Add(duration)
				}
				d.Start, d.End = from, to
			}

			updated, err := ed.CommitSlot(d)
			if err != nil {
				return friendly(err)
			}
			if err := sess.Save(ctx); err != nil {
				return fmt.Errorf("saving schedule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated slot %s: %s %s %s-%s\n",
				shortID(updated.ID),
				updated.Title,
				updated.Start.Format("2006-01-02"),
				updated.Start.Format("15:04"),
				updated.End.Format("15:04"),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&date, "date", "", "New date")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM)")
	cmd.Flags().StringVar(&color, "color", "", "New color")
	cmd.Flags().StringVar(&notes, "notes", "", "New notes")

	return cmd
}

func (a *App) moveCmd() *cobra.Command {
	var (
		date  string
		start string
	)

	cmd := &cobra.Command{
		Use:   "move [schedule] [slot]",
		Short: "Move a slot, keeping its length",
		Long: `Move a slot to a new start on the half-hour grid.
The new start must fall inside the configured hours.

Example:
  chousei move 3f1c... 9a2b --date=wednesday --start=14:30`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := a.open(ctx, args[0], false)
			if err != nil {
				return err
			}
			ed := sess.Editor()
			s, err := findSlot(ed.Slots(), args[1])
			if err != nil {
				return err
			}
			if !ed.Role().CanEdit() {
				return friendly(slot.ErrNotEditor)
			}

			from, _, err := parseInterval(date, start, "", a.now())
			if err != nil {
				return err
			}
			ed.GoToWeek(from)
			pos, ok := ed.Grid().PositionOf(from, ed.WeekStart())
			if !ok || pos.Minutes() != dateutil.MinutesOfDay(from) || !ed.MoveSlot(s.ID, pos) {
				return fmt.Errorf("%s is not a grid position between %02d:00 and %02d:00 on the half hour",
					from.Format("2006-01-02 15:04"), ed.Grid().Range.Start, ed.Grid().Range.End)
			}
			if err := sess.Save(ctx); err != nil {
				return fmt.Errorf("saving schedule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Moved slot %s to %s %s-%s\n",
				shortID(s.ID),
				s.Start.Format("2006-01-02"),
				s.Start.Format("15:04"),
				s.End.Format("15:04"),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Target date (default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Target start time (HH:MM, required)")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [schedule] [slot]",
		Aliases: []string{"rm"},
		Short:   "Delete a slot",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := a.open(ctx, args[0], false)
			if err != nil {
				return err
			}
			ed := sess.Editor()
			s, err := findSlot(ed.Slots(), args[1])
			if err != nil {
				return err
			}
			if err := ed.DeleteSlot(s.ID); err != nil {
				return friendly(err)
			}
			if err := sess.Save(ctx); err != nil {
				return fmt.Errorf("saving schedule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted slot %s: %s\n", shortID(s.ID), s.Title)
			return nil
		},
	}
}
