package slot

import "time"

// Schedule is the named collection of slots being coordinated.
type Schedule struct {
	ID       string
	Title    string
	Owner    string
	Slots    []*Slot
	SharedAt time.Time // zero if never shared
}

// Valid returns true if the schedule has been shared at least once.
func (s *Schedule) Valid() bool {
	return !s.SharedAt.IsZero()
}

// Role is the acting user's relation to a schedule.
type Role int

const (
	// RoleOwner created the schedule and may change its slots.
	RoleOwner Role = iota
	// RoleRespondentWithSlots votes on slots somebody else proposed.
	RoleRespondentWithSlots
	// RoleRespondentBootstrapping opened a link with no slots yet and may populate it.
	RoleRespondentBootstrapping
)

// ResolveRole computes the role once at load time.
func ResolveRole(isCreator bool, slotCount int) Role {
	switch {
	case isCreator:
		return RoleOwner
	case slotCount == 0:
		return RoleRespondentBootstrapping
	default:
		return RoleRespondentWithSlots
	}
}

// CanEdit returns true if the role may create, move, edit or delete slots.
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleRespondentBootstrapping
}

// String returns a short name for the role.
func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleRespondentWithSlots:
		return "respondent"
	case RoleRespondentBootstrapping:
		return "bootstrapping"
	default:
		return "unknown"
	}
}
