// Package memory stores activities, users, and preferences in memory for
// local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/sportmeet/internal/domain"
)

// Repository implements the domain repository interfaces without external
// dependencies. Listing orders match the Postgres implementation so callers
// observe the same sequences.
type Repository struct {
	mu         sync.RWMutex
	activities map[string]domain.Activity
	users      map[string]domain.User
	userOrder  []string
	prefs      map[string]domain.Preferences
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		activities: make(map[string]domain.Activity),
		users:      make(map[string]domain.User),
		prefs:      make(map[string]domain.Preferences),
	}
}

// CreateActivity stores a new activity.
func (r *Repository) CreateActivity(ctx context.Context, activity domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities[activity.ID] = activity
	return nil
}

// GetActivity returns the activity or nil when absent.
func (r *Repository) GetActivity(ctx context.Context, activityID string) (*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.activities[activityID]
	if !ok {
		return nil, nil
	}
	return &activity, nil
}

// ListAllActivities returns every activity ordered by start date then ID.
func (r *Repository) ListAllActivities(ctx context.Context) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedActivitiesLocked(), nil
}

// ListActivities returns one page with keyset pagination.
func (r *Repository) ListActivities(ctx context.Context, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	all := r.sortedActivitiesLocked()
	r.mu.RUnlock()

	start := 0
	if cursor != nil {
		for i, activity := range all {
			if activity.StartDate.After(cursor.StartDate) ||
				(activity.StartDate.Equal(cursor.StartDate) && activity.ID > cursor.ID) {
				start = i
				break
			}
			start = len(all)
		}
	}

	page := all[start:]
	var next *domain.Cursor
	if len(page) > limit {
		page = page[:limit]
		last := page[len(page)-1]
		next = &domain.Cursor{StartDate: last.StartDate, ID: last.ID}
	}
	return page, next, nil
}

// SetActivityCanceled flips the cancellation flag.
func (r *Repository) SetActivityCanceled(ctx context.Context, activityID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[activityID]
	if !ok {
		return domain.ErrActivityNotFound
	}
	activity.IsCanceled = true
	activity.UpdatedAt = at
	r.activities[activityID] = activity
	return nil
}

// GetUser returns the user or nil when absent.
func (r *Repository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// ListAllUsers returns the roster in insertion order.
func (r *Repository) ListAllUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.userOrder))
	for _, id := range r.userOrder {
		out = append(out, r.users[id])
	}
	return out, nil
}

// UpsertUser writes the full user record.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.users[user.ID]; !seen {
		r.userOrder = append(r.userOrder, user.ID)
	}
	r.users[user.ID] = user
	return nil
}

// GetPreferences returns saved filters or nil when never saved.
func (r *Repository) GetPreferences(ctx context.Context, userID string) (*domain.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefs, ok := r.prefs[userID]
	if !ok {
		return nil, nil
	}
	return &prefs, nil
}

// SetPreferences saves the filters.
func (r *Repository) SetPreferences(ctx context.Context, userID string, prefs domain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[userID] = prefs
	return nil
}

// ClearPreferences removes saved filters.
func (r *Repository) ClearPreferences(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.prefs, userID)
	return nil
}

func (r *Repository) sortedActivitiesLocked() []domain.Activity {
	out := make([]domain.Activity, 0, len(r.activities))
	for _, activity := range r.activities {
		out = append(out, activity)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
