package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/session"
)

// Run shows sess in the week grid until the user quits or ctx is done.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	m, err := New(ctx, sess, opts)
	if err != nil {
		return err
	}

	m.log.Info("tui started",
		zap.String("schedule", sess.ID()),
		zap.Stringer("role", sess.Editor().Role()))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
