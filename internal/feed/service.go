package feed

import (
	"context"
	"time"

	"example.com/sportmeet/internal/domain"
	"example.com/sportmeet/internal/geo"
	"example.com/sportmeet/internal/observability"
)

// ActivitySource supplies the full activity collection on demand, the
// pull-to-refresh analog of the mobile client.
type ActivitySource interface {
	ListAllActivities(ctx context.Context) ([]domain.Activity, error)
}

// UserSource supplies the current user roster snapshot. The loaded flag is
// false until the first snapshot has been delivered.
type UserSource interface {
	Snapshot() (users []domain.User, loaded bool)
}

// PreferenceSource supplies the caller's saved filters, with defaults applied
// for users who never saved any.
type PreferenceSource interface {
	Preferences(ctx context.Context, userID string) (domain.Preferences, error)
}

// Service runs the assembly and filter pipeline against live sources. It owns
// no state of its own; every call computes from a fresh consistent snapshot.
type Service struct {
	activities ActivitySource
	users      UserSource
	prefs      PreferenceSource
	now        func() time.Time
}

// NewService constructs a Service. The now function defaults to UTC wall time
// and is injectable for tests.
func NewService(activities ActivitySource, users UserSource, prefs PreferenceSource) *Service {
	return &Service{
		activities: activities,
		users:      users,
		prefs:      prefs,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock. Intended for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Query identifies one feed computation: who is asking, which view they
// selected, and where they are (nil when the device has no fix).
type Query struct {
	UserID   string
	View     ViewMode
	Position *geo.Position
}

// Feed assembles and filters the activity list for one query. Source failures
// propagate unwrapped; loading and unavailable outcomes are carried in the
// Result state.
func (s *Service) Feed(ctx context.Context, q Query) (Result, error) {
	start := time.Now()

	users, loaded := s.users.Snapshot()

	activities, err := s.activities.ListAllActivities(ctx)
	if err != nil {
		return Result{}, err
	}

	prefs, err := s.prefs.Preferences(ctx, q.UserID)
	if err != nil {
		return Result{}, err
	}

	snap := Snapshot{
		Activities:       activities,
		ActivitiesLoaded: true,
		Users:            users,
		UsersLoaded:      loaded,
		CurrentUserID:    q.UserID,
		Position:         q.Position,
		PositionResolved: true,
		Now:              s.now(),
	}

	result := Filter(Assemble(snap), Selection{
		Prefs:         &prefs,
		View:          q.View,
		CurrentUserID: q.UserID,
	})

	observability.RecordFeedComputation(result.State.String(), time.Since(start))
	return result, nil
}
