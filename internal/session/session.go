package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/approval"
	"github.com/javiermolinar/chousei/internal/editor"
	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/payload"
	"github.com/javiermolinar/chousei/internal/slot"
	"github.com/javiermolinar/chousei/internal/store"
)

// ErrNameRequired is returned by actions that need a user name. Callers
// prompt for a name, call SetName and retry.
var ErrNameRequired = approval.ErrNameRequired

// DefaultBaseURL is used when no share base URL is configured.
const DefaultBaseURL = "https://chousei.app/"

// Deps are the collaborators of a Session.
type Deps struct {
	Repo      *store.Repository
	Clipboard Clipboard
	Log       *zap.Logger
	BaseURL   string
	Grid      grid.Config
	Now       func() time.Time
}

// Session is one user's view of one schedule.
type Session struct {
	id         string
	title      string
	responseID string
	known      []string
	needsTitle bool

	editor *editor.Manager
	agg    *approval.Aggregator
	repo   *store.Repository
	clip   Clipboard
	log    *zap.Logger
	base   string
	now    func() time.Time
	status Status
}

// New builds a session from a load result.
func New(deps Deps, res *Result, actor string) *Session {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Clipboard == nil {
		deps.Clipboard = SystemClipboard{}
	}
	if deps.BaseURL == "" {
		deps.BaseURL = DefaultBaseURL
	}
	if deps.Grid.HourHeight == 0 {
		deps.Grid = grid.DefaultConfig()
	}

	actor = strings.TrimSpace(actor)
	return &Session{
		id:         res.Schedule.ID,
		title:      res.Schedule.Title,
		responseID: res.ResponseID,
		known:      res.Known,
		needsTitle: res.NeedsTitle,
		editor: editor.New(res.Schedule.Slots, actor, res.Role,
			editor.WithClock(deps.Now), editor.WithGrid(deps.Grid)),
		agg:  approval.New(deps.Repo, deps.Log),
		repo: deps.Repo,
		clip: deps.Clipboard,
		log:  deps.Log.With(zap.String("schedule", res.Schedule.ID)),
		base: deps.BaseURL,
		now:  deps.Now,
	}
}

// ID returns the schedule id.
func (s *Session) ID() string { return s.id }

// Title returns the schedule title.
func (s *Session) Title() string { return s.title }

// NeedsTitle is true until a new schedule has been given a title.
func (s *Session) NeedsTitle() bool { return s.needsTitle }

// Editor returns the slot manager.
func (s *Session) Editor() *editor.Manager { return s.editor }

// Actor returns the acting user's name.
func (s *Session) Actor() string { return s.editor.Actor() }

// Known returns the respondents seen so far.
func (s *Session) Known() []string { return s.known }

// Status returns the status message visible now.
func (s *Session) Status() string { return s.status.Text(s.now()) }

// SetName sets and remembers the acting user's name.
func (s *Session) SetName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	s.editor.SetActor(name)
	return s.repo.SetUserName(ctx, name)
}

// SetTitle names the schedule. On a new schedule the actor is recorded as
// its owner and the id is added to the local history list.
func (s *Session) SetTitle(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return slot.ErrEmptyTitle
	}
	owner := ""
	if s.editor.Role() == slot.RoleOwner {
		owner = s.Actor()
	}
	if err := s.repo.SaveMeta(ctx, s.id, title, owner); err != nil {
		return err
	}
	if err := s.repo.RegisterScheduleID(ctx, s.id); err != nil {
		return err
	}
	s.title = title
	s.needsTitle = false
	return nil
}

// Save stores the current slot set as local history.
func (s *Session) Save(ctx context.Context) error {
	return s.repo.SaveHistory(ctx, s.id, s.editor.Slots(), s.now())
}

// Vote records the actor's vote on one slot.
func (s *Session) Vote(ctx context.Context, slotID string, ok bool) error {
	if s.Actor() == "" {
		return ErrNameRequired
	}
	return s.agg.SetVote(ctx, s.id, s.responseID, s.editor.Slots(), slotID, s.Actor(), ok)
}

// Share builds the creator's share link from the slots the actor created or
// that reached quorum, marks the actor as approver of each, stores the
// result as history and copies the link.
func (s *Session) Share(ctx context.Context) (string, error) {
	actor := s.Actor()
	if actor == "" {
		return "", ErrNameRequired
	}

	shared := slot.CloneAll(approval.FilterForShare(s.editor.Slots(), actor, s.known))
	approval.MarkApprover(shared, actor)

	link, err := payload.BuildLink(s.base, payload.Link{
		ScheduleID: s.id,
		Title:      s.title,
		Slots:      shared,
	})
	if err != nil {
		return "", err
	}

	err = s.repo.SaveHistory(ctx, s.id, shared, s.now())
	if errors.Is(err, store.ErrStaleHistory) {
		s.log.Warn("shared history not stored, a newer one exists")
	} else if err != nil {
		return "", err
	}
	if err := s.repo.RegisterScheduleID(ctx, s.id); err != nil {
		return "", err
	}

	s.log.Info("schedule shared", zap.Int("slots", len(shared)), zap.Int("total", len(s.editor.Slots())))
	s.copy(link)
	return link, nil
}

// Answer records the actor's answers, counting unanswered slots as OK, and
// returns a link carrying only the OK slots plus a home link with just the
// schedule id and title. The answer link is copied.
func (s *Session) Answer(ctx context.Context) (answer, home string, err error) {
	actor := s.Actor()
	if actor == "" {
		return "", "", ErrNameRequired
	}

	ok, err := s.agg.AnswerSheet(ctx, s.id, s.responseID, s.editor.Slots(), actor)
	if err != nil {
		return "", "", err
	}

	answer, err = payload.BuildLink(s.base, payload.Link{
		ScheduleID: s.id,
		Title:      s.title,
		Slots:      slot.CloneAll(ok),
		ResponseID: s.responseID,
	})
	if err != nil {
		return "", "", err
	}
	home, err = payload.HomeLink(s.base, s.id, s.title)
	if err != nil {
		return "", "", err
	}

	s.copy(answer)
	return answer, home, nil
}

// copy writes text to the clipboard. Failures only change the status.
func (s *Session) copy(text string) {
	if err := s.clip.WriteAll(text); err != nil {
		s.log.Warn("clipboard write failed", zap.Error(err))
		s.status.Set(StatusCopyFailed, s.now())
		return
	}
	s.status.Set(StatusCopied, s.now())
}
