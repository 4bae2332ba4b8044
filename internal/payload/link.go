package payload

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/javiermolinar/chousei/internal/slot"
)

// Query parameter names.
const (
	ParamID         = "id"
	ParamEvents     = "events"
	ParamTitle      = "title"
	ParamResponders = "responders"
	ParamResponseID = "responseId"
)

// Link is the state carried by a share link.
type Link struct {
	ScheduleID string
	Title      string
	Slots      []*slot.Slot
	Responders []string
	ResponseID string

	// HasPayload is true when the link carried an events parameter.
	HasPayload bool
	// DecodeErr holds the reason the events parameter was unusable.
	DecodeErr error
}

// BuildLink returns base with the link state in its query.
// Responders default to the approvers of l.Slots.
func BuildLink(base string, l Link) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	events, err := EncodeSlots(l.Slots)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set(ParamEvents, events)
	q.Set(ParamID, l.ScheduleID)
	if l.Title != "" {
		q.Set(ParamTitle, escapeComponent(l.Title))
	}
	responders := l.Responders
	if len(responders) == 0 {
		responders = Responders(l.Slots)
	}
	if len(responders) > 0 {
		q.Set(ParamResponders, strings.Join(responders, ","))
	}
	if l.ResponseID != "" {
		q.Set(ParamResponseID, l.ResponseID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// HomeLink returns base with only the schedule id and title, the link a
// respondent keeps to get back to a schedule without re-sending answers.
func HomeLink(base, scheduleID, title string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	q := url.Values{}
	q.Set(ParamID, scheduleID)
	if title != "" {
		q.Set(ParamTitle, escapeComponent(title))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseLink reads link state from a URL or a bare query string.
// An unusable events parameter is recorded in DecodeErr rather than failing.
func ParseLink(raw string) (Link, error) {
	raw = strings.TrimSpace(raw)
	query := raw
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "/") {
		u, err := url.Parse(raw)
		if err != nil {
			return Link{}, fmt.Errorf("parsing link: %w", err)
		}
		query = u.RawQuery
	} else {
		query = strings.TrimPrefix(query, "?")
	}

	q, err := url.ParseQuery(query)
	if err != nil {
		return Link{}, fmt.Errorf("parsing link query: %w", err)
	}

	l := Link{
		ScheduleID: strings.TrimSpace(q.Get(ParamID)),
		Title:      unescapeComponent(q.Get(ParamTitle)),
		ResponseID: strings.TrimSpace(q.Get(ParamResponseID)),
	}
	seen := make(map[string]bool)
	for _, name := range strings.Split(q.Get(ParamResponders), ",") {
		if name = strings.TrimSpace(name); name != "" && !seen[name] {
			seen[name] = true
			l.Responders = append(l.Responders, name)
		}
	}

	if events := q.Get(ParamEvents); events != "" {
		l.HasPayload = true
		l.Slots, l.DecodeErr = DecodeSlots(events)
	}
	return l, nil
}
