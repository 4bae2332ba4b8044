package session

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// Clipboard receives share links.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteAll copies text to the OS clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Status messages shown after a copy.
const (
	StatusCopied     = "link copied"
	StatusCopyFailed = "failed to copy"
)

// StatusRevertAfter is how long a status message stays visible.
const StatusRevertAfter = 2 * time.Second

// Status is a short-lived message that reverts to empty on its own.
type Status struct {
	mu    sync.Mutex
	text  string
	until time.Time
}

// Set shows text until StatusRevertAfter past now. A newer message replaces
// the old one and restarts the timer.
func (s *Status) Set(text string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.until = now.Add(StatusRevertAfter)
}

// Text returns the message visible at now.
func (s *Status) Text(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Before(s.until) {
		return s.text
	}
	return ""
}
