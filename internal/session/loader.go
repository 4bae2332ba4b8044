// Package session loads a schedule from a share link or local history and
// runs the share and answer flows on top of it.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/approval"
	"github.com/javiermolinar/chousei/internal/payload"
	"github.com/javiermolinar/chousei/internal/slot"
	"github.com/javiermolinar/chousei/internal/store"
)

// Source tells where the loaded slots came from.
type Source int

const (
	// SourceNew is a schedule created on this load.
	SourceNew Source = iota
	// SourcePayload is the events parameter of the link.
	SourcePayload
	// SourceHistory is the locally stored history.
	SourceHistory
	// SourceEmpty is a known id with nothing stored and no usable payload.
	SourceEmpty
)

func (s Source) String() string {
	switch s {
	case SourceNew:
		return "new"
	case SourcePayload:
		return "link"
	case SourceHistory:
		return "history"
	default:
		return "empty"
	}
}

// Result is the outcome of loading a schedule.
type Result struct {
	Schedule   *slot.Schedule
	Role       slot.Role
	Source     Source
	NeedsTitle bool
	ResponseID string
	// Known lists the respondents seen in the link and the slots.
	Known []string
	// DecodeErr is set when the link payload was unusable.
	DecodeErr error
}

// Loader resolves a link into a schedule.
type Loader struct {
	repo *store.Repository
	log  *zap.Logger
	now  func() time.Time
}

// NewLoader creates a Loader. A nil logger disables logging.
func NewLoader(repo *store.Repository, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{repo: repo, log: log, now: time.Now}
}

// WithClock overrides time.Now, used as the share time of stored payloads.
func (l *Loader) WithClock(now func() time.Time) *Loader {
	l.now = now
	return l
}

// IsCreator reports whether actor created the schedule the link points at.
// A link without an id starts a new schedule, so its opener is the creator.
func (l *Loader) IsCreator(ctx context.Context, link payload.Link, actor string) (bool, error) {
	if link.ScheduleID == "" {
		return true, nil
	}
	return l.repo.IsOwner(ctx, link.ScheduleID, actor)
}

// Load picks the slot source in this order:
//  1. a decodable payload opened by its creator, which is then stored;
//  2. a decodable payload opened by a respondent, unless local history exists;
//  3. local history for the link id;
//  4. a fresh schedule when the link has neither id nor payload.
//
// The actor's stored votes are applied last and the role is fixed here.
func (l *Loader) Load(ctx context.Context, link payload.Link, actor string, isCreator bool) (*Result, error) {
	res := &Result{ResponseID: link.ResponseID, DecodeErr: link.DecodeErr}
	id := link.ScheduleID

	if link.HasPayload && link.DecodeErr != nil {
		l.log.Warn("falling back to local history",
			zap.String("schedule", id),
			zap.Error(link.DecodeErr),
		)
	}

	if id == "" && !(link.HasPayload && link.DecodeErr == nil) {
		res.Schedule = &slot.Schedule{ID: uuid.NewString(), Owner: actor}
		res.Source = SourceNew
		res.NeedsTitle = true
		res.Role = slot.RoleOwner
		l.log.Info("new schedule", zap.String("schedule", res.Schedule.ID))
		return res, nil
	}
	if id == "" {
		id = uuid.NewString()
	}

	sched := &slot.Schedule{ID: id}
	usePayload := link.HasPayload && link.DecodeErr == nil

	switch {
	case usePayload && isCreator:
		sched.Slots = link.Slots
		res.Source = SourcePayload
		sched.SharedAt = l.now()
		err := l.repo.SaveHistory(ctx, id, sched.Slots, sched.SharedAt)
		if errors.Is(err, store.ErrStaleHistory) {
			l.log.Warn("kept newer local history", zap.String("schedule", id))
		} else if err != nil {
			return nil, err
		}
		if link.Title != "" {
			if err := l.repo.SetTitle(ctx, id, link.Title); err != nil {
				return nil, err
			}
		}

	case usePayload:
		hist, ok, err := l.repo.LoadHistory(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			sched.Slots = hist.Slots
			sched.SharedAt = hist.SharedAt
			res.Source = SourceHistory
		} else {
			sched.Slots = link.Slots
			res.Source = SourcePayload
		}

	default:
		hist, ok, err := l.repo.LoadHistory(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			sched.Slots = hist.Slots
			sched.SharedAt = hist.SharedAt
			res.Source = SourceHistory
		} else {
			res.Source = SourceEmpty
		}
	}

	title, ok, err := l.repo.Title(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case link.Title != "":
		sched.Title = link.Title
	case ok:
		sched.Title = title
	}
	if owner, ok, err := l.repo.Owner(ctx, id); err != nil {
		return nil, err
	} else if ok {
		sched.Owner = owner
	}

	if actor != "" {
		votes, ok, err := l.repo.Approvals(ctx, id, actor, link.ResponseID)
		if err != nil {
			return nil, err
		}
		if ok {
			approval.ApplyVotes(sched.Slots, actor, votes)
		}
	}

	res.Schedule = sched
	res.Role = slot.ResolveRole(isCreator, len(sched.Slots))
	res.Known = mergeNames(link.Responders, approval.CollectApprovers(sched.Slots))

	l.log.Debug("schedule loaded",
		zap.String("schedule", id),
		zap.Stringer("source", res.Source),
		zap.Stringer("role", res.Role),
		zap.Int("slots", len(sched.Slots)),
	)
	return res, nil
}

func mergeNames(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, name := range list {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
