package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/editor"
	"github.com/javiermolinar/chousei/internal/ical"
	"github.com/javiermolinar/chousei/internal/session"
	"github.com/javiermolinar/chousei/internal/slot"
)

func (a *App) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [schedule]",
		Short: "Export slots as an iCalendar file",
		Long: `Write the slots of a schedule as VEVENTs, for calendar apps.

Example:
  chousei export 3f1c... -o team-sync.ics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := a.open(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				path, err := resolvePath(output)
				if err != nil {
					return err
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating %s: %w", path, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			slots := slot.CloneAll(sess.Editor().Slots())
			slot.SortByStart(slots)
			if err := ical.Export(w, sess.Title(), slots, a.now()); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d slots to %s\n", len(slots), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func (a *App) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [schedule] [file.ics]",
		Short: "Propose slots from an iCalendar file",
		Long: `Read the events of an .ics file and add each one as a slot you
propose. Events in the past or otherwise invalid are skipped.

Example:
  chousei import 3f1c... ~/Downloads/availability.ics`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, _, err := a.open(ctx, args[0], false)
			if err != nil {
				return err
			}

			path, err := resolvePath(args[1])
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer func() { _ = f.Close() }()

			imported, skipped, err := importSlots(sess, f, a.logger())
			if err != nil {
				return friendly(err)
			}
			if err := sess.Save(ctx); err != nil {
				return fmt.Errorf("saving schedule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d slots from %s", imported, path)
			if skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d skipped)", skipped)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	return cmd
}

// importSlots commits every usable event of r through the session editor.
func importSlots(sess *session.Session, r io.Reader, log *zap.Logger) (imported, skipped int, err error) {
	ed := sess.Editor()
	if !ed.Role().CanEdit() {
		return 0, 0, slot.ErrNotEditor
	}
	slots, err := ical.Import(r, sess.Actor())
	if err != nil {
		return 0, 0, err
	}

	for _, s := range slots {
		_, err := ed.CommitSlot(editor.Draft{
			Title: s.Title,
			Start: s.Start,
			End:   s.End,
			Color: s.Color,
			Notes: s.Notes,
		})
		switch {
		case err == nil:
			imported++
		case errors.Is(err, slot.ErrSlotInPast), errors.Is(err, slot.ErrEndBeforeStart):
			skipped++
			log.Debug("skipping event", zap.String("title", s.Title), zap.Error(err))
		default:
			return imported, skipped, fmt.Errorf("importing %q: %w", s.Title, err)
		}
	}
	return imported, skipped, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
