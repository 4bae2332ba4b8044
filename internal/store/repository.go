package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/chousei/internal/grid"
	"github.com/javiermolinar/chousei/internal/slot"
)

// Key prefixes and fixed keys.
const (
	eventsPrefix    = "calendar-events-"
	titlePrefix     = "calendar-schedule-title-"
	ownerPrefix     = "calendar-schedule-owner-"
	approvalsPrefix = "calendar-approvals-"

	scheduleIDsKey = "calendar-schedule-ids"
	userNameKey    = "calendar-user-name"
	timeRangeKey   = "calendar-time-range"
)

// UntitledSchedule is shown for schedules without a stored title.
const UntitledSchedule = "Untitled schedule"

// ErrStaleHistory is returned when saving history older than what is stored.
var ErrStaleHistory = errors.New("stored schedule history is newer")

// EventsKey returns the history key for a schedule.
func EventsKey(id string) string { return eventsPrefix + id }

// TitleKey returns the title key for a schedule.
func TitleKey(id string) string { return titlePrefix + id }

// OwnerKey returns the owner key for a schedule.
func OwnerKey(id string) string { return ownerPrefix + id }

// ApprovalsKey returns the vote key for one respondent of a schedule.
// responseID is appended when set.
func ApprovalsKey(id, name, responseID string) string {
	key := approvalsPrefix + id + "-" + name
	if responseID != "" {
		key += "-" + responseID
	}
	return key
}

// history is the stored form of a schedule's slots.
type history struct {
	Events   []slot.Stored `json:"events"`
	SharedAt string        `json:"sharedAt"`
}

// Entry summarizes one schedule for history listings.
type Entry struct {
	ID        string
	Title     string
	SharedAt  time.Time
	SlotCount int
}

// Repository owns key naming and typed access on top of a Store.
type Repository struct {
	store Store
	log   *zap.Logger
}

// NewRepository wraps s. A nil logger disables logging.
func NewRepository(s Store, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{store: s, log: log}
}

// Store returns the underlying store.
func (r *Repository) Store() Store { return r.store }

// Close closes the underlying store.
func (r *Repository) Close() error { return r.store.Close() }

// getJSON reads a JSON value and treats corrupted entries as absent.
func getJSON[T any](ctx context.Context, r *Repository, key string) (T, bool, error) {
	v, ok, err := GetJSON[T](ctx, r.store, key)
	var corrupted *ErrCorrupted
	if errors.As(err, &corrupted) {
		r.log.Warn("ignoring corrupted entry", zap.String("key", key), zap.Error(corrupted.Err))
		var zero T
		return zero, false, nil
	}
	return v, ok, err
}

func (r *Repository) getString(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	return string(raw), true, nil
}

// LoadHistory returns the stored schedule slots and share time.
// ok is false when nothing usable is stored.
func (r *Repository) LoadHistory(ctx context.Context, id string) (*slot.Schedule, bool, error) {
	h, ok, err := getJSON[history](ctx, r, EventsKey(id))
	if err != nil || !ok {
		return nil, false, err
	}
	slots, err := slot.FromStoredAll(h.Events)
	if err != nil {
		r.log.Warn("ignoring unreadable history", zap.String("schedule", id), zap.Error(err))
		return nil, false, nil
	}
	sched := &slot.Schedule{ID: id, Slots: slots}
	if at, err := slot.ParseISO(h.SharedAt); err == nil {
		sched.SharedAt = at
	}
	return sched, true, nil
}

// SaveHistory stores slots with their share time.
// It returns ErrStaleHistory, leaving the stored value untouched, when the
// stored share time is newer than sharedAt.
func (r *Repository) SaveHistory(ctx context.Context, id string, slots []*slot.Slot, sharedAt time.Time) error {
	if id == "" {
		return slot.ErrMissingID
	}
	prev, ok, err := getJSON[history](ctx, r, EventsKey(id))
	if err != nil {
		return err
	}
	if ok {
		if prevAt, err := slot.ParseISO(prev.SharedAt); err == nil && prevAt.After(sharedAt) {
			return fmt.Errorf("%w: %s", ErrStaleHistory, id)
		}
	}
	h := history{Events: slot.ToStoredAll(slots), SharedAt: slot.FormatISO(sharedAt)}
	return SetJSON(ctx, r.store, EventsKey(id), h)
}

// Title returns the stored schedule title.
func (r *Repository) Title(ctx context.Context, id string) (string, bool, error) {
	return r.getString(ctx, TitleKey(id))
}

// SetTitle stores the schedule title.
func (r *Repository) SetTitle(ctx context.Context, id, title string) error {
	return r.store.Set(ctx, TitleKey(id), []byte(title))
}

// SaveMeta stores the title and creator of a schedule together.
// An empty owner leaves the stored owner untouched.
func (r *Repository) SaveMeta(ctx context.Context, id, title, owner string) error {
	entries := map[string][]byte{TitleKey(id): []byte(title)}
	if owner != "" {
		entries[OwnerKey(id)] = []byte(owner)
	}
	return SetAll(ctx, r.store, entries)
}

// Owner returns the name recorded as the schedule's creator.
func (r *Repository) Owner(ctx context.Context, id string) (string, bool, error) {
	return r.getString(ctx, OwnerKey(id))
}

// IsOwner returns true if name is recorded as the schedule's creator.
func (r *Repository) IsOwner(ctx context.Context, id, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	owner, ok, err := r.Owner(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	return owner == name, nil
}

// Approvals returns one respondent's votes for a schedule, keyed by slot id.
func (r *Repository) Approvals(ctx context.Context, id, name, responseID string) (map[string]bool, bool, error) {
	return getJSON[map[string]bool](ctx, r, ApprovalsKey(id, name, responseID))
}

// SetApprovals stores one respondent's votes for a schedule.
func (r *Repository) SetApprovals(ctx context.Context, id, name, responseID string, votes map[string]bool) error {
	return SetJSON(ctx, r.store, ApprovalsKey(id, name, responseID), votes)
}

// HasAnswered returns true if name has stored votes for the schedule.
func (r *Repository) HasAnswered(ctx context.Context, id, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	base := ApprovalsKey(id, name, "")
	keys, err := r.store.Keys(ctx, base)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == base || strings.HasPrefix(k, base+"-") {
			return true, nil
		}
	}
	return false, nil
}

// ScheduleIDs returns the ids of schedules created on this machine.
func (r *Repository) ScheduleIDs(ctx context.Context) ([]string, error) {
	ids, _, err := getJSON[[]string](ctx, r, scheduleIDsKey)
	return ids, err
}

// RegisterScheduleID adds id to the known schedule ids.
func (r *Repository) RegisterScheduleID(ctx context.Context, id string) error {
	ids, err := r.ScheduleIDs(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}
	return SetJSON(ctx, r.store, scheduleIDsKey, append(ids, id))
}

// UserName returns the remembered user name.
func (r *Repository) UserName(ctx context.Context) (string, error) {
	name, _, err := r.getString(ctx, userNameKey)
	return name, err
}

// SetUserName remembers the user name. Blank names are ignored.
func (r *Repository) SetUserName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return r.store.Set(ctx, userNameKey, []byte(name))
}

// TimeRange returns the stored display window.
func (r *Repository) TimeRange(ctx context.Context) (grid.TimeRange, bool, error) {
	tr, ok, err := getJSON[grid.TimeRange](ctx, r, timeRangeKey)
	if err != nil || !ok {
		return grid.TimeRange{}, false, err
	}
	if tr.Validate() != nil {
		r.log.Warn("ignoring invalid time range", zap.Int("start", tr.Start), zap.Int("end", tr.End))
		return grid.TimeRange{}, false, nil
	}
	return tr, true, nil
}

// SetTimeRange stores the display window.
func (r *Repository) SetTimeRange(ctx context.Context, tr grid.TimeRange) error {
	if err := tr.Validate(); err != nil {
		return err
	}
	return SetJSON(ctx, r.store, timeRangeKey, tr)
}

// History lists the schedules created here, newest share first.
// Entries that are missing or have no valid share time are skipped.
func (r *Repository) History(ctx context.Context) ([]Entry, error) {
	ids, err := r.ScheduleIDs(ctx)
	if err != nil {
		return nil, err
	}
	return r.entries(ctx, ids)
}

// Answered lists the schedules name has voted on, newest share first.
func (r *Repository) Answered(ctx context.Context, name string) ([]Entry, error) {
	keys, err := r.store.Keys(ctx, eventsPrefix)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, k := range keys {
		id := strings.TrimPrefix(k, eventsPrefix)
		answered, err := r.HasAnswered(ctx, id, name)
		if err != nil {
			return nil, err
		}
		if answered {
			ids = append(ids, id)
		}
	}
	return r.entries(ctx, ids)
}

func (r *Repository) entries(ctx context.Context, ids []string) ([]Entry, error) {
	var out []Entry
	for _, id := range ids {
		h, ok, err := getJSON[history](ctx, r, EventsKey(id))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		at, err := slot.ParseISO(h.SharedAt)
		if err != nil {
			continue
		}
		title, ok, err := r.Title(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok || title == "" {
			title = UntitledSchedule
		}
		out = append(out, Entry{ID: id, Title: title, SharedAt: at, SlotCount: len(h.Events)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SharedAt.After(out[j].SharedAt)
	})
	return out, nil
}

// Forget removes everything stored about a schedule.
func (r *Repository) Forget(ctx context.Context, id string) error {
	for _, key := range []string{EventsKey(id), TitleKey(id), OwnerKey(id)} {
		if err := r.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	keys, err := r.store.Keys(ctx, approvalsPrefix+id+"-")
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := r.store.Delete(ctx, k); err != nil {
			return err
		}
	}

	ids, err := r.ScheduleIDs(ctx)
	if err != nil {
		return err
	}
	if i := slices.Index(ids, id); i >= 0 {
		return SetJSON(ctx, r.store, scheduleIDsKey, slices.Delete(ids, i, i+1))
	}
	return nil
}
