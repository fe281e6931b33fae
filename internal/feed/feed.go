// Package feed assembles and filters the activity list shown on the home
// screen. Both stages are pure functions over immutable snapshots; callers
// re-run them whenever any input changes.
package feed

import (
	"time"

	"example.com/sportmeet/internal/domain"
	"example.com/sportmeet/internal/geo"
)

// State tags the feed computation outcome. Loading means one or more inputs
// have not resolved yet; Unavailable means the current user could not be found
// in the roster (transient right after sign-up); Ready carries the items.
type State int

const (
	StateLoading State = iota
	StateUnavailable
	StateReady
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnavailable:
		return "unavailable"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Item is an activity enriched with display-only fields. Distance is nil when
// no device position is known, which is distinct from zero kilometers away.
type Item struct {
	domain.Activity
	Distance                     *float64
	IsOngoing                    bool
	SpotsLeft                    int
	ParticipantIDs               []string
	FollowedParticipantFullNames []string
}

// Result is the tagged outcome of an assembly or filter pass. Items is only
// meaningful when State is StateReady.
type Result struct {
	State State
	Items []Item
}

// Snapshot is the full, consistent input set for one assembly pass. The loaded
// flags distinguish "collection still loading" from "collection is empty", and
// PositionResolved distinguishes "fix not attempted yet" from "no fix
// available" (Position nil).
type Snapshot struct {
	Activities       []domain.Activity
	ActivitiesLoaded bool
	Users            []domain.User
	UsersLoaded      bool
	CurrentUserID    string
	Position         *geo.Position
	PositionResolved bool
	Now              time.Time
}
