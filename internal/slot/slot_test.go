package slot

import (
	"errors"
	"testing"
	"time"
)

func makeSlot(start, end time.Time) *Slot {
	return &Slot{
		ID:    "s1",
		Title: "Team Sync",
		Start: start,
		End:   end,
		Color: DefaultColor,
	}
}

func TestSlot_Validate(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		mutate  func(s *Slot)
		wantErr error
	}{
		{name: "valid", mutate: func(*Slot) {}},
		{name: "missing id", mutate: func(s *Slot) { s.ID = "" }, wantErr: ErrMissingID},
		{name: "empty title", mutate: func(s *Slot) { s.Title = "" }, wantErr: ErrEmptyTitle},
		{name: "unknown color", mutate: func(s *Slot) { s.Color = "#000000" }, wantErr: ErrInvalidColor},
		{name: "end equals start", mutate: func(s *Slot) { s.End = s.Start }, wantErr: ErrEndBeforeStart},
		{name: "end before start", mutate: func(s *Slot) { s.End = s.Start.Add(-time.Hour) }, wantErr: ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := makeSlot(base, base.Add(time.Hour))
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlot_OverlapsWith(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2025, 6, 2, h, m, 0, 0, time.Local) }

	tests := []struct {
		name string
		a, b *Slot
		want bool
	}{
		{"partial overlap", makeSlot(at(9, 0), at(10, 0)), makeSlot(at(9, 30), at(10, 30)), true},
		{"contained", makeSlot(at(9, 0), at(12, 0)), makeSlot(at(10, 0), at(11, 0)), true},
		{"adjacent", makeSlot(at(9, 0), at(10, 0)), makeSlot(at(10, 0), at(11, 0)), false},
		{"disjoint", makeSlot(at(9, 0), at(10, 0)), makeSlot(at(14, 0), at(15, 0)), false},
		{"nil other", makeSlot(at(9, 0), at(10, 0)), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.OverlapsWith(tt.b); got != tt.want {
				t.Errorf("OverlapsWith() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlot_ApprovedByDerivedFromApprovals(t *testing.T) {
	s := makeSlot(time.Now(), time.Now().Add(time.Hour))

	s.SetVote("Bob", true)
	s.SetVote("Alice", true)
	s.SetVote("Carol", false)

	got := s.ApprovedBy()
	want := []string{"Alice", "Bob"}
	if len(got) != len(want) {
		t.Fatalf("ApprovedBy() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ApprovedBy()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	s.SetVote("Bob", false)
	for _, name := range s.ApprovedBy() {
		if name == "Bob" {
			t.Error("Bob still listed after NG vote")
		}
	}
	if s.ApprovalCount() != 1 {
		t.Errorf("ApprovalCount() = %d, want 1", s.ApprovalCount())
	}
}

func TestSlot_VoteAbsentIsDistinctFromNG(t *testing.T) {
	s := makeSlot(time.Now(), time.Now().Add(time.Hour))
	if _, ok := s.Vote("Alice"); ok {
		t.Error("expected no vote for Alice")
	}
	s.SetVote("Alice", false)
	vote, ok := s.Vote("Alice")
	if !ok || vote {
		t.Errorf("Vote(Alice) = (%v, %v), want (false, true)", vote, ok)
	}
}

func TestSlot_CloneIsDeep(t *testing.T) {
	s := makeSlot(time.Now(), time.Now().Add(time.Hour))
	s.SetVote("Alice", true)

	c := s.Clone()
	c.SetVote("Alice", false)
	c.Title = "changed"

	if v, _ := s.Vote("Alice"); !v {
		t.Error("clone shares approvals map with original")
	}
	if s.Title != "Team Sync" {
		t.Error("clone shares title with original")
	}
}

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name      string
		isCreator bool
		slots     int
		want      Role
		canEdit   bool
	}{
		{"creator with slots", true, 3, RoleOwner, true},
		{"creator without slots", true, 0, RoleOwner, true},
		{"respondent with slots", false, 2, RoleRespondentWithSlots, false},
		{"respondent on empty schedule", false, 0, RoleRespondentBootstrapping, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRole(tt.isCreator, tt.slots)
			if got != tt.want {
				t.Errorf("ResolveRole() = %v, want %v", got, tt.want)
			}
			if got.CanEdit() != tt.canEdit {
				t.Errorf("CanEdit() = %v, want %v", got.CanEdit(), tt.canEdit)
			}
		})
	}
}
