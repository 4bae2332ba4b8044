package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/chousei/internal/dateutil"
	"github.com/javiermolinar/chousei/internal/slot"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{30, "30m"},
		{60, "1h"},
		{90, "1h30m"},
		{150, "2h30m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.minutes); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFindSlot(t *testing.T) {
	slots := []*slot.Slot{
		{ID: "abc12345-0000"},
		{ID: "abd99999-0000"},
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr bool
	}{
		{"exact", "abd99999-0000", "abd99999-0000", false},
		{"unique prefix", "abc", "abc12345-0000", false},
		{"ambiguous prefix", "ab", "", true},
		{"no match", "zzz", "", true},
		{"empty", " ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := findSlot(slots, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("findSlot(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if !tt.wantErr && s.ID != tt.wantID {
				t.Errorf("findSlot(%q) = %s, want %s", tt.ref, s.ID, tt.wantID)
			}
		})
	}

	if _, err := findSlot(slots, "zzz"); !errors.Is(err, slot.ErrSlotNotFound) {
		t.Errorf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestParseInterval(t *testing.T) {
	now := time.Date(2030, 6, 2, 8, 0, 0, 0, time.Local)

	tests := []struct {
		name               string
		date, start, end   string
		wantStart, wantEnd string
		wantErr            bool
	}{
		{"explicit", "2030-06-03", "09:00", "10:30", "2030-06-03 09:00", "2030-06-03 10:30", false},
		{"default end", "tomorrow", "14:00", "", "2030-06-03 14:00", "2030-06-03 15:00", false},
		{"default date", "", "18:30", "19:00", "2030-06-02 18:30", "2030-06-02 19:00", false},
		{"bad clock", "", "9am", "", "", "", true},
		{"bad end", "", "09:00", "25:00", "", "", true},
		{"past date", "2030-05-01", "09:00", "", "", "", true},
	}
	const layout = "2006-01-02 15:04"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := parseInterval(tt.date, tt.start, tt.end, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInterval() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := from.Format(layout); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := to.Format(layout); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", slot.DefaultColor, false},
		{"green", "#34a853", false},
		{"Teal", "#46bdc6", false},
		{"#EA4335", "#ea4335", false},
		{"#000000", "", true},
		{"purple", "", true},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseVote(t *testing.T) {
	for _, in := range []string{"ok", "OK", "yes", "o"} {
		if v, err := parseVote(in); err != nil || !v {
			t.Errorf("parseVote(%q) = %v, %v", in, v, err)
		}
	}
	for _, in := range []string{"ng", "NG", "no", "x"} {
		if v, err := parseVote(in); err != nil || v {
			t.Errorf("parseVote(%q) = %v, %v", in, v, err)
		}
	}
	if _, err := parseVote("maybe"); err == nil {
		t.Error("expected error for maybe")
	}
}

func TestPrintSlots_GroupsByDay(t *testing.T) {
	day := time.Date(2030, 6, 3, 0, 0, 0, 0, time.Local)
	slots := []*slot.Slot{
		{ID: "later-slot", Title: "Retro", Start: dateutil.At(day.AddDate(0, 0, 1), 16*60), End: dateutil.At(day.AddDate(0, 0, 1), 17*60)},
		{ID: "early-slot", Title: "Standup", Start: dateutil.At(day, 9*60), End: dateutil.At(day, 9*60+30),
			Approvals: map[string]bool{"Alice": true, "Bob": false}},
	}

	var buf bytes.Buffer
	PrintSlots(&buf, slots, PrintOpts{Actor: "Alice", Known: []string{"Alice", "Bob", "Carol"}, MaxDescWidth: 12})
	out := buf.String()

	mon := bytes.Index(buf.Bytes(), []byte("Mon Jun 3"))
	tue := bytes.Index(buf.Bytes(), []byte("Tue Jun 4"))
	if mon < 0 || tue < 0 || mon > tue {
		t.Fatalf("expected Monday before Tuesday:\n%s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("✓  09:00-09:30  [early-sl]  Standup       30m  OK 1/3")) {
		t.Errorf("unexpected Standup row:\n%s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("○  16:00-17:00  [later-sl]  Retro         1h  OK 0/3")) {
		t.Errorf("unexpected Retro row:\n%s", out)
	}
}
