// Package approval aggregates respondent votes on slots and decides which
// slots are carried forward when a schedule is shared again.
package approval

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/slot"
)

// ErrNameRequired is returned when an action needs the actor's name and none is set.
var ErrNameRequired = errors.New("a name is required")

// VoteStore persists one respondent's votes for a schedule.
type VoteStore interface {
	SetApprovals(ctx context.Context, scheduleID, name, responseID string, votes map[string]bool) error
}

// Aggregator records votes and persists them per respondent.
type Aggregator struct {
	votes VoteStore
	log   *zap.Logger
}

// New creates an Aggregator. A nil logger disables logging.
func New(votes VoteStore, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{votes: votes, log: log}
}

// SetVote records name's vote on one slot and persists name's full vote map.
// The in-memory vote stays applied even if persisting fails.
func (a *Aggregator) SetVote(ctx context.Context, scheduleID, responseID string, slots []*slot.Slot, slotID, name string, vote bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	s := slot.Find(slots, slotID)
	if s == nil {
		return fmt.Errorf("%w: %s", slot.ErrSlotNotFound, slotID)
	}
	s.SetVote(name, vote)

	if err := a.votes.SetApprovals(ctx, scheduleID, name, responseID, Votes(slots, name)); err != nil {
		return fmt.Errorf("saving votes: %w", err)
	}
	a.log.Debug("vote recorded",
		zap.String("schedule", scheduleID),
		zap.String("slot", slotID),
		zap.String("name", name),
		zap.Bool("ok", vote),
	)
	return nil
}

// AnswerSheet gives every slot an explicit vote from actor, counting
// unanswered slots as OK, persists the result and returns the OK slots.
func (a *Aggregator) AnswerSheet(ctx context.Context, scheduleID, responseID string, slots []*slot.Slot, actor string) ([]*slot.Slot, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, ErrNameRequired
	}

	var ok []*slot.Slot
	for _, s := range slots {
		v, voted := s.Vote(actor)
		if !voted {
			v = true
			s.SetVote(actor, true)
		}
		if v {
			ok = append(ok, s)
		}
	}

	if err := a.votes.SetApprovals(ctx, scheduleID, actor, responseID, Votes(slots, actor)); err != nil {
		return nil, fmt.Errorf("saving votes: %w", err)
	}
	a.log.Info("answers recorded",
		zap.String("schedule", scheduleID),
		zap.String("name", actor),
		zap.Int("ok", len(ok)),
		zap.Int("total", len(slots)),
	)
	return ok, nil
}

// Votes returns name's explicit votes keyed by slot id.
func Votes(slots []*slot.Slot, name string) map[string]bool {
	out := make(map[string]bool)
	for _, s := range slots {
		if v, ok := s.Vote(name); ok {
			out[s.ID] = v
		}
	}
	return out
}

// ApplyVotes overlays stored votes of name onto slots. Unknown slot ids are ignored.
func ApplyVotes(slots []*slot.Slot, name string, votes map[string]bool) {
	if name == "" {
		return
	}
	for _, s := range slots {
		if v, ok := votes[s.ID]; ok {
			s.SetVote(name, v)
		}
	}
}

// Threshold returns the number of OK votes a slot needs to be shared by actor.
// known is the list of respondents seen so far; the actor counts as one more
// respondent when not listed, and one vote of slack is allowed.
func Threshold(known []string, actor string) int {
	n := len(known)
	if !slices.Contains(known, actor) {
		n++
	}
	return n - 1
}

// ComputeQuorum returns true if s has enough OK votes to be shared by actor.
// With a single respondent the threshold is zero, so even an unvoted slot
// reaches quorum.
func ComputeQuorum(s *slot.Slot, known []string, actor string) bool {
	return s.ApprovalCount() >= Threshold(known, actor)
}

// FilterForShare returns the slots actor created plus those reaching quorum,
// in input order.
func FilterForShare(slots []*slot.Slot, actor string, known []string) []*slot.Slot {
	var out []*slot.Slot
	for _, s := range slots {
		if s.CreatedBy == actor || ComputeQuorum(s, known, actor) {
			out = append(out, s)
		}
	}
	return out
}

// MarkApprover records an OK vote from name on every slot name has not
// voted on yet. An explicit vote, NG included, is left as it is.
func MarkApprover(slots []*slot.Slot, name string) {
	if name == "" {
		return
	}
	for _, s := range slots {
		if _, voted := s.Vote(name); voted {
			continue
		}
		s.SetVote(name, true)
	}
}

// CollectApprovers returns slot creators and approvers in first-seen order,
// without duplicates or blank names.
func CollectApprovers(slots []*slot.Slot) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, s := range slots {
		add(s.CreatedBy)
		for _, name := range s.ApprovedBy() {
			add(name)
		}
	}
	return out
}

// Tally is the vote summary of one slot.
type Tally struct {
	OK      []string
	NG      []string
	Pending []string
}

// Count returns the vote summary of s against the known respondents.
// Names with a vote but missing from known are included.
func Count(s *slot.Slot, known []string) Tally {
	var t Tally
	names := slices.Clone(known)
	for name := range s.Approvals {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		v, ok := s.Vote(name)
		switch {
		case !ok:
			t.Pending = append(t.Pending, name)
		case v:
			t.OK = append(t.OK, name)
		default:
			t.NG = append(t.NG, name)
		}
	}
	return t
}
