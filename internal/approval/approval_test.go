package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/slot"
	"github.com/javiermolinar/chousei/internal/store"
)

var start = time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)

func newSlot(id, createdBy string, approvals map[string]bool) *slot.Slot {
	return &slot.Slot{
		ID: id, Title: id, Start: start, End: start.Add(time.Hour),
		Color: slot.DefaultColor, CreatedBy: createdBy, Approvals: approvals,
	}
}

func newTestAggregator(t *testing.T) (*Aggregator, *store.Repository) {
	t.Helper()
	repo := store.NewRepository(store.NewMemory(), zap.NewNop())
	return New(repo, zap.NewNop()), repo
}

func TestComputeQuorum_ThreeRespondents(t *testing.T) {
	known := []string{"Carol", "Alice", "Bob"}
	s := newSlot("s1", "Carol", nil)

	assert.False(t, ComputeQuorum(s, known, "Carol"), "no votes yet")

	s.SetVote("Alice", true)
	assert.False(t, ComputeQuorum(s, known, "Carol"), "1 < 3-1")

	s.SetVote("Bob", true)
	assert.True(t, ComputeQuorum(s, known, "Carol"), "2 >= 3-1")
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		name  string
		known []string
		actor string
		want  int
	}{
		{"nobody known", nil, "alice", 0},
		{"actor already known", []string{"alice", "bob"}, "alice", 1},
		{"actor counts as one more", []string{"alice", "bob"}, "carol", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Threshold(tt.known, tt.actor))
		})
	}
}

func TestComputeQuorum_SingleRespondent(t *testing.T) {
	tests := []struct {
		name  string
		known []string
		votes map[string]bool
		want  bool
	}{
		{"actor alone, no votes", []string{"Carol"}, map[string]bool{}, true},
		{"actor alone, nil approvals", []string{"Carol"}, nil, true},
		{"nobody known yet", nil, nil, true},
		{"actor alone voted NG", []string{"Carol"}, map[string]bool{"Carol": false}, true},
		{"two known, no votes", []string{"Carol", "Bob"}, map[string]bool{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSlot("s1", "Dan", tt.votes)
			assert.Equal(t, tt.want, ComputeQuorum(s, tt.known, "Carol"))
			shared := FilterForShare([]*slot.Slot{s}, "Carol", tt.known)
			assert.Equal(t, tt.want, len(shared) == 1)
		})
	}
}

func TestComputeQuorum_Monotonic(t *testing.T) {
	known := []string{"a", "b", "c", "d"}
	s := newSlot("s1", "a", nil)

	reached := false
	for _, name := range []string{"b", "c", "d", "a"} {
		s.SetVote(name, true)
		got := ComputeQuorum(s, known, "a")
		if reached {
			assert.True(t, got, "quorum lost after adding an OK vote from %s", name)
		}
		reached = reached || got
	}
	assert.True(t, reached)

	s.SetVote("e", false)
	assert.True(t, ComputeQuorum(s, known, "a"), "an NG vote must not remove quorum")
}

func TestFilterForShare(t *testing.T) {
	known := []string{"alice", "bob"}
	own := newSlot("own", "alice", nil)
	approved := newSlot("approved", "bob", map[string]bool{"bob": true})
	rejected := newSlot("rejected", "bob", map[string]bool{"bob": false})
	unvoted := newSlot("unvoted", "", nil)

	got := FilterForShare([]*slot.Slot{rejected, own, approved, unvoted}, "alice", known)
	require.Len(t, got, 2)
	assert.Equal(t, "own", got[0].ID)
	assert.Equal(t, "approved", got[1].ID)
}

func TestCollectApprovers(t *testing.T) {
	slots := []*slot.Slot{
		newSlot("s1", "carol", map[string]bool{"bob": true, "alice": true, "dave": false}),
		newSlot("s2", " ", map[string]bool{"carol": true, "erin": true}),
	}
	assert.Equal(t, []string{"carol", "alice", "bob", "erin"}, CollectApprovers(slots))
	assert.Empty(t, CollectApprovers(nil))
}

func TestSetVote_PersistsFullMap(t *testing.T) {
	ctx := context.Background()
	agg, repo := newTestAggregator(t)
	slots := []*slot.Slot{newSlot("s1", "carol", nil), newSlot("s2", "carol", nil)}

	require.NoError(t, agg.SetVote(ctx, "abc", "", slots, "s1", "bob", true))
	require.NoError(t, agg.SetVote(ctx, "abc", "", slots, "s2", "bob", false))

	votes, ok, err := repo.Approvals(ctx, "abc", "bob", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]bool{"s1": true, "s2": false}, votes)

	assert.Equal(t, []string{"bob"}, slots[0].ApprovedBy())
	assert.Empty(t, slots[1].ApprovedBy())

	require.NoError(t, agg.SetVote(ctx, "abc", "", slots, "s1", "bob", false))
	assert.Empty(t, slots[0].ApprovedBy(), "approvedBy must follow the latest vote")
}

func TestSetVote_Errors(t *testing.T) {
	ctx := context.Background()
	agg, _ := newTestAggregator(t)
	slots := []*slot.Slot{newSlot("s1", "carol", nil)}

	err := agg.SetVote(ctx, "abc", "", slots, "s1", "  ", true)
	assert.True(t, errors.Is(err, ErrNameRequired))

	err = agg.SetVote(ctx, "abc", "", slots, "missing", "bob", true)
	assert.True(t, errors.Is(err, slot.ErrSlotNotFound))
}

func TestAnswerSheet(t *testing.T) {
	ctx := context.Background()
	agg, repo := newTestAggregator(t)
	slots := []*slot.Slot{
		newSlot("s1", "carol", nil),
		newSlot("s2", "carol", map[string]bool{"bob": false}),
		newSlot("s3", "carol", map[string]bool{"bob": true}),
	}

	ok, err := agg.AnswerSheet(ctx, "abc", "r1", slots, "bob")
	require.NoError(t, err)
	require.Len(t, ok, 2)
	assert.Equal(t, "s1", ok[0].ID, "unanswered counts as OK")
	assert.Equal(t, "s3", ok[1].ID)

	votes, found, err := repo.Approvals(ctx, "abc", "bob", "r1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, map[string]bool{"s1": true, "s2": false, "s3": true}, votes)

	_, err = agg.AnswerSheet(ctx, "abc", "", slots, "")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestApplyVotesAndMarkApprover(t *testing.T) {
	slots := []*slot.Slot{newSlot("s1", "carol", nil), newSlot("s2", "carol", map[string]bool{"bob": true})}

	ApplyVotes(slots, "bob", map[string]bool{"s1": true, "s2": false, "gone": true})
	assert.Equal(t, map[string]bool{"s1": true, "s2": false}, Votes(slots, "bob"))

	MarkApprover(slots, "carol")
	for _, s := range slots {
		v, ok := s.Vote("carol")
		assert.True(t, ok && v, "carol not marked on %s", s.ID)
	}

	MarkApprover(slots, "bob")
	assert.Equal(t, map[string]bool{"s1": true, "s2": false}, Votes(slots, "bob"), "explicit NG is kept")
}

func TestCount(t *testing.T) {
	s := newSlot("s1", "carol", map[string]bool{"alice": true, "bob": false, "zoe": true})
	got := Count(s, []string{"carol", "alice", "bob"})
	assert.Equal(t, []string{"alice", "zoe"}, got.OK)
	assert.Equal(t, []string{"bob"}, got.NG)
	assert.Equal(t, []string{"carol"}, got.Pending)
}
