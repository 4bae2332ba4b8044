package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/payload"
	"github.com/javiermolinar/chousei/internal/slot"
	"github.com/javiermolinar/chousei/internal/store"
)

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

const base = "https://chousei.app/"

var sundayMorning = time.Date(2025, 6, 1, 7, 0, 0, 0, time.Local)

func newRepo() *store.Repository {
	return store.NewRepository(store.NewMemory(), zap.NewNop())
}

func deps(repo *store.Repository, clip Clipboard, c *clock) Deps {
	return Deps{Repo: repo, Clipboard: clip, Log: zap.NewNop(), BaseURL: base, Now: c.Now}
}

// createAndShare runs the creator flow on repo and returns the share link.
func createAndShare(t *testing.T, repo *store.Repository, c *clock) (string, *Session) {
	t.Helper()
	ctx := context.Background()
	loader := NewLoader(repo, zap.NewNop()).WithClock(c.Now)

	res, err := loader.Load(ctx, payload.Link{}, "", true)
	require.NoError(t, err)
	require.True(t, res.NeedsTitle)
	require.Equal(t, slot.RoleOwner, res.Role)

	sess := New(deps(repo, &fakeClipboard{}, c), res, "")
	require.NoError(t, sess.SetName(ctx, "Carol"))
	require.NoError(t, sess.SetTitle(ctx, "Team Sync"))

	ed := sess.Editor()
	require.True(t, ed.BeginSelection(grid.Position{Day: 1, Hour: 9}))
	d, ok := ed.FinishSelection()
	require.True(t, ok)
	d.Title = "Standup"
	_, err = ed.CommitSlot(d)
	require.NoError(t, err)

	link, err := sess.Share(ctx)
	require.NoError(t, err)
	return link, sess
}

func TestCreatorFlow(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	c := &clock{t: sundayMorning}

	link, sess := createAndShare(t, repo, c)

	assert.False(t, sess.NeedsTitle())
	assert.Equal(t, StatusCopied, sess.Status())
	c.t = c.t.Add(StatusRevertAfter)
	assert.Empty(t, sess.Status(), "status reverts after two seconds")

	l, err := payload.ParseLink(link)
	require.NoError(t, err)
	assert.Equal(t, sess.ID(), l.ScheduleID)
	assert.Equal(t, "Team Sync", l.Title)
	require.Len(t, l.Slots, 1)
	assert.Equal(t, "Standup", l.Slots[0].Title)
	assert.Equal(t, "Carol", l.Slots[0].CreatedBy)
	assert.Equal(t, []string{"Carol"}, l.Slots[0].ApprovedBy(), "sharer is marked as approver")
	assert.Equal(t, []string{"Carol"}, l.Responders)

	owner, ok, err := repo.Owner(ctx, sess.ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Carol", owner)

	entries, err := repo.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Team Sync", entries[0].Title)
	assert.True(t, entries[0].SharedAt.Equal(sundayMorning))

	name, _ := repo.UserName(ctx)
	assert.Equal(t, "Carol", name)
}

func TestShare_KeepsSharerNG(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	c := &clock{t: sundayMorning}
	_, sess := createAndShare(t, repo, c)

	ed := sess.Editor()
	require.True(t, ed.BeginSelection(grid.Position{Day: 2, Hour: 10}))
	d, ok := ed.FinishSelection()
	require.True(t, ok)
	d.Title = "Retro"
	retro, err := ed.CommitSlot(d)
	require.NoError(t, err)
	require.NoError(t, sess.Vote(ctx, retro.ID, false))

	link, err := sess.Share(ctx)
	require.NoError(t, err)
	l, err := payload.ParseLink(link)
	require.NoError(t, err)
	require.Len(t, l.Slots, 2)
	for _, s := range l.Slots {
		v, voted := s.Vote("Carol")
		require.True(t, voted, s.Title)
		assert.Equal(t, s.Title == "Standup", v, s.Title)
	}
}

func TestShare_RequiresName(t *testing.T) {
	repo := newRepo()
	c := &clock{t: sundayMorning}
	res, err := NewLoader(repo, nil).Load(context.Background(), payload.Link{}, "", true)
	require.NoError(t, err)

	sess := New(deps(repo, &fakeClipboard{}, c), res, "")
	_, err = sess.Share(context.Background())
	assert.True(t, errors.Is(err, ErrNameRequired))

	_, _, err = sess.Answer(context.Background())
	assert.ErrorIs(t, err, ErrNameRequired)

	assert.ErrorIs(t, sess.SetName(context.Background(), "  "), ErrNameRequired)
}

func TestShare_ClipboardFailureIsRecovered(t *testing.T) {
	repo := newRepo()
	c := &clock{t: sundayMorning}
	res, err := NewLoader(repo, nil).Load(context.Background(), payload.Link{}, "Carol", true)
	require.NoError(t, err)

	sess := New(deps(repo, &fakeClipboard{err: errors.New("no display")}, c), res, "Carol")
	link, err := sess.Share(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, link)
	assert.Equal(t, StatusCopyFailed, sess.Status())

	c.t = c.t.Add(time.Second)
	assert.Equal(t, StatusCopyFailed, sess.Status())
	c.t = c.t.Add(time.Second)
	assert.Empty(t, sess.Status())
}

func TestSetTitle_Empty(t *testing.T) {
	repo := newRepo()
	res, err := NewLoader(repo, nil).Load(context.Background(), payload.Link{}, "Carol", true)
	require.NoError(t, err)
	sess := New(deps(repo, &fakeClipboard{}, &clock{t: sundayMorning}), res, "Carol")

	assert.ErrorIs(t, sess.SetTitle(context.Background(), "   "), slot.ErrEmptyTitle)
	assert.True(t, sess.NeedsTitle())
}

func TestRespondentFlow(t *testing.T) {
	ctx := context.Background()
	creatorRepo := newRepo()
	c := &clock{t: sundayMorning}
	link, creator := createAndShare(t, creatorRepo, c)

	// Bob opens the link on another machine.
	bobRepo := newRepo()
	loader := NewLoader(bobRepo, zap.NewNop()).WithClock(c.Now)
	l, err := payload.ParseLink(link)
	require.NoError(t, err)

	isCreator, err := loader.IsCreator(ctx, l, "Bob")
	require.NoError(t, err)
	assert.False(t, isCreator)

	res, err := loader.Load(ctx, l, "Bob", isCreator)
	require.NoError(t, err)
	assert.Equal(t, SourcePayload, res.Source)
	assert.Equal(t, slot.RoleRespondentWithSlots, res.Role)
	assert.Equal(t, "Team Sync", res.Schedule.Title)
	assert.Equal(t, []string{"Carol"}, res.Known)

	clip := &fakeClipboard{}
	sess := New(deps(bobRepo, clip, c), res, "Bob")
	assert.False(t, sess.Editor().BeginSelection(grid.Position{Day: 2, Hour: 10}), "respondent cannot add slots")

	answer, home, err := sess.Answer(ctx)
	require.NoError(t, err)
	assert.Equal(t, answer, clip.text)

	al, err := payload.ParseLink(answer)
	require.NoError(t, err)
	require.Len(t, al.Slots, 1)
	assert.Equal(t, []string{"Bob", "Carol"}, al.Slots[0].ApprovedBy())

	hl, err := payload.ParseLink(home)
	require.NoError(t, err)
	assert.Equal(t, creator.ID(), hl.ScheduleID)
	assert.Equal(t, "Team Sync", hl.Title)
	assert.False(t, hl.HasPayload)

	votes, ok, err := bobRepo.Approvals(ctx, creator.ID(), "Bob", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, votes, 1)

	// Carol opens Bob's answer: her stored owner makes her the creator again.
	creatorLoader := NewLoader(creatorRepo, zap.NewNop()).WithClock(c.Now)
	isCreator, err = creatorLoader.IsCreator(ctx, al, "Carol")
	require.NoError(t, err)
	require.True(t, isCreator)

	back, err := creatorLoader.Load(ctx, al, "Carol", true)
	require.NoError(t, err)
	assert.Equal(t, SourcePayload, back.Source)
	assert.ElementsMatch(t, []string{"Carol", "Bob"}, back.Known)
	assert.Equal(t, slot.RoleOwner, back.Role)
}

func TestLoad_RespondentPrefersLocalHistory(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	local := []*slot.Slot{
		{ID: "a", Title: "Local A", Start: start, End: start.Add(time.Hour), Color: slot.DefaultColor},
		{ID: "b", Title: "Local B", Start: start, End: start.Add(time.Hour), Color: slot.DefaultColor},
	}
	require.NoError(t, repo.SaveHistory(ctx, "abc", local, sundayMorning))
	require.NoError(t, repo.SetApprovals(ctx, "abc", "Bob", "", map[string]bool{"b": false}))

	remote := []*slot.Slot{{ID: "a", Title: "Remote A", Start: start, End: start.Add(time.Hour), Color: slot.DefaultColor}}
	res, err := NewLoader(repo, nil).Load(ctx, payload.Link{ScheduleID: "abc", HasPayload: true, Slots: remote}, "Bob", false)
	require.NoError(t, err)

	assert.Equal(t, SourceHistory, res.Source)
	require.Len(t, res.Schedule.Slots, 2)
	assert.Equal(t, "Local A", res.Schedule.Slots[0].Title)
	v, ok := res.Schedule.Slots[1].Vote("Bob")
	assert.True(t, ok && !v, "stored NG vote applied")
}

func TestLoad_DecodeFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	local := []*slot.Slot{{ID: "a", Title: "Local A", Start: start, End: start.Add(time.Hour), Color: slot.DefaultColor}}
	require.NoError(t, repo.SaveHistory(ctx, "abc", local, sundayMorning))
	require.NoError(t, repo.SetTitle(ctx, "abc", "Stored title"))

	l, err := payload.ParseLink(base + "?id=abc&events=garbage!")
	require.NoError(t, err)
	require.Error(t, l.DecodeErr)

	res, err := NewLoader(repo, nil).Load(ctx, l, "Carol", true)
	require.NoError(t, err)
	assert.Equal(t, SourceHistory, res.Source)
	assert.ErrorIs(t, res.DecodeErr, payload.ErrMalformedPayload)
	assert.Equal(t, "Stored title", res.Schedule.Title)
	require.Len(t, res.Schedule.Slots, 1)
}

func TestLoad_IDWithoutHistory(t *testing.T) {
	res, err := NewLoader(newRepo(), nil).Load(context.Background(), payload.Link{ScheduleID: "abc"}, "Bob", false)
	require.NoError(t, err)
	assert.Equal(t, SourceEmpty, res.Source)
	assert.Equal(t, slot.RoleRespondentBootstrapping, res.Role)
	assert.False(t, res.NeedsTitle)
	assert.Equal(t, "abc", res.Schedule.ID)
}

func TestLoad_CreatorPayloadIsStored(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	slots := []*slot.Slot{{ID: "a", Title: "A", Start: start, End: start.Add(time.Hour), Color: slot.DefaultColor}}

	c := &clock{t: sundayMorning}
	res, err := NewLoader(repo, nil).WithClock(c.Now).Load(ctx,
		payload.Link{ScheduleID: "abc", Title: "Offsite", HasPayload: true, Slots: slots}, "Carol", true)
	require.NoError(t, err)
	assert.Equal(t, SourcePayload, res.Source)

	hist, ok, err := repo.LoadHistory(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, hist.Slots, 1)
	assert.True(t, hist.SharedAt.Equal(sundayMorning))

	title, _, _ := repo.Title(ctx, "abc")
	assert.Equal(t, "Offsite", title)
}

func TestVote(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local)
	slots := []*slot.Slot{{ID: "a", Title: "A", Start: start, End: start.Add(time.Hour), Color: slot.DefaultColor, CreatedBy: "Carol"}}
	res, err := NewLoader(repo, nil).Load(ctx, payload.Link{ScheduleID: "abc", HasPayload: true, Slots: slots, ResponseID: "r9"}, "Bob", false)
	require.NoError(t, err)

	sess := New(deps(repo, &fakeClipboard{}, &clock{t: sundayMorning}), res, "Bob")
	require.NoError(t, sess.Vote(ctx, "a", true))

	votes, ok, err := repo.Approvals(ctx, "abc", "Bob", "r9")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]bool{"a": true}, votes)

	anon := New(deps(repo, &fakeClipboard{}, &clock{t: sundayMorning}), res, "")
	assert.ErrorIs(t, anon.Vote(ctx, "a", true), ErrNameRequired)
}
