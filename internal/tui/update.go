package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg refreshes the now line.
type tickMsg time.Time

// refreshMsg re-renders once a session status has reverted.
type refreshMsg struct{}

// clearStatusMsg drops an expired status message.
type clearStatusMsg struct{}

func tickEvery() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func refreshAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d+100*time.Millisecond, func(time.Time) tea.Msg { return refreshMsg{} })
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case tickMsg:
		return m, tickEvery()

	case refreshMsg:
		return m, nil

	case clearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil
	}

	// Cursor blink and other input messages.
	var cmd tea.Cmd
	switch m.mode {
	case ModePrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	case ModeForm:
		m.formTitle, cmd = m.formTitle.Update(msg)
		var notesCmd tea.Cmd
		m.formNotes, notesCmd = m.formNotes.Update(msg)
		cmd = tea.Batch(cmd, notesCmd)
	}
	return m, cmd
}
