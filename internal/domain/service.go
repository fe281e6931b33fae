// Package domain defines the business logic for the sportmeet service.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrActivityNotFound is returned when an activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrUserNotFound is returned when a user record cannot be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotOrganizer indicates the caller does not own the activity.
	ErrNotOrganizer = errors.New("caller is not the activity organizer")
	// ErrActivityCanceled indicates the activity was canceled and cannot be joined.
	ErrActivityCanceled = errors.New("activity is canceled")
	// ErrSelfFollow indicates an attempt to follow oneself.
	ErrSelfFollow = errors.New("cannot follow yourself")
)

// ActivityRepository captures activity persistence operations.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity Activity) error
	GetActivity(ctx context.Context, activityID string) (*Activity, error)
	ListAllActivities(ctx context.Context) ([]Activity, error)
	ListActivities(ctx context.Context, cursor *Cursor, limit int) ([]Activity, *Cursor, error)
	SetActivityCanceled(ctx context.Context, activityID string, at time.Time) error
}

// UserRepository captures user persistence operations.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	ListAllUsers(ctx context.Context) ([]User, error)
	UpsertUser(ctx context.Context, user User) error
}

// PreferenceRepository stores per-user feed filter settings. GetPreferences
// returns nil when the user never saved filters.
type PreferenceRepository interface {
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
	SetPreferences(ctx context.Context, userID string, prefs Preferences) error
	ClearPreferences(ctx context.Context, userID string) error
}

// Cursor models the pagination token for activity listings.
type Cursor struct {
	StartDate time.Time
	ID        string
}

// Service orchestrates activity, user, and preference workflows.
type Service struct {
	activities ActivityRepository
	users      UserRepository
	prefs      PreferenceRepository
}

// NewService constructs a Service.
func NewService(activities ActivityRepository, users UserRepository, prefs PreferenceRepository) *Service {
	return &Service{activities: activities, users: users, prefs: prefs}
}

// CreateActivityInput captures the payload from the API layer.
type CreateActivityInput struct {
	Sport             Sport
	StartDate         time.Time
	EndDate           *time.Time
	Location          Location
	Level             Level
	SpotCount         int
	PricePerPerson    float64
	AdditionalDetails string
	OrganizerID       string
}

// Validate checks creation-time invariants.
func (in CreateActivityInput) Validate() error {
	if !in.Sport.Valid() {
		return fmt.Errorf("unknown sport %q", in.Sport)
	}
	if !in.Level.Valid() {
		return fmt.Errorf("unknown level %q", in.Level)
	}
	if in.StartDate.IsZero() {
		return errors.New("start date is required")
	}
	if in.EndDate != nil && !in.EndDate.After(in.StartDate) {
		return errors.New("end date must be after start date")
	}
	if strings.TrimSpace(in.Location.Address) == "" {
		return errors.New("location address is required")
	}
	if in.SpotCount <= 0 {
		return errors.New("spot count must be > 0")
	}
	if in.PricePerPerson < 0 {
		return errors.New("price per person must be >= 0")
	}
	if strings.TrimSpace(in.OrganizerID) == "" {
		return errors.New("organizer id is required")
	}
	return nil
}

// CreateActivity validates the input and persists a new activity.
func (s *Service) CreateActivity(ctx context.Context, input CreateActivityInput) (*Activity, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	activity := Activity{
		ID:                uuid.NewString(),
		Sport:             input.Sport,
		StartDate:         input.StartDate.UTC(),
		Location:          input.Location,
		Level:             input.Level,
		SpotCount:         input.SpotCount,
		PricePerPerson:    input.PricePerPerson,
		AdditionalDetails: input.AdditionalDetails,
		OrganizerID:       input.OrganizerID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if input.EndDate != nil {
		end := input.EndDate.UTC()
		activity.EndDate = &end
	}

	if err := s.activities.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// GetActivity fetches an activity by ID.
func (s *Service) GetActivity(ctx context.Context, activityID string) (*Activity, error) {
	activity, err := s.activities.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// ListActivities fetches activities with cursor pagination.
func (s *Service) ListActivities(ctx context.Context, cursor *Cursor, limit int) ([]Activity, *Cursor, error) {
	return s.activities.ListActivities(ctx, cursor, limit)
}

// ListAllActivities fetches the full activity collection.
func (s *Service) ListAllActivities(ctx context.Context) ([]Activity, error) {
	return s.activities.ListAllActivities(ctx)
}

// CancelActivity flips the cancellation flag. Only the organizer may cancel;
// canceling an already-canceled activity is a no-op.
func (s *Service) CancelActivity(ctx context.Context, callerID, activityID string) error {
	activity, err := s.GetActivity(ctx, activityID)
	if err != nil {
		return err
	}
	if activity.OrganizerID != callerID {
		return ErrNotOrganizer
	}
	if activity.IsCanceled {
		return nil
	}
	return s.activities.SetActivityCanceled(ctx, activityID, time.Now().UTC())
}

// JoinActivity records participation on the caller's user record.
func (s *Service) JoinActivity(ctx context.Context, userID, activityID string) error {
	activity, err := s.GetActivity(ctx, activityID)
	if err != nil {
		return err
	}
	if activity.IsCanceled {
		return ErrActivityCanceled
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	user.ActivityIDs = addID(user.ActivityIDs, activityID)
	user.UpdatedAt = time.Now().UTC()
	return s.users.UpsertUser(ctx, *user)
}

// LeaveActivity removes participation from the caller's user record.
func (s *Service) LeaveActivity(ctx context.Context, userID, activityID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	user.ActivityIDs = removeID(user.ActivityIDs, activityID)
	user.UpdatedAt = time.Now().UTC()
	return s.users.UpsertUser(ctx, *user)
}

// FollowUser adds the target to the caller's following list.
func (s *Service) FollowUser(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return ErrSelfFollow
	}
	if _, err := s.getUser(ctx, targetID); err != nil {
		return err
	}

	follower, err := s.getUser(ctx, followerID)
	if err != nil {
		return err
	}
	follower.FollowingIDs = addID(follower.FollowingIDs, targetID)
	follower.UpdatedAt = time.Now().UTC()
	return s.users.UpsertUser(ctx, *follower)
}

// UnfollowUser removes the target from the caller's following list.
func (s *Service) UnfollowUser(ctx context.Context, followerID, targetID string) error {
	follower, err := s.getUser(ctx, followerID)
	if err != nil {
		return err
	}
	follower.FollowingIDs = removeID(follower.FollowingIDs, targetID)
	follower.UpdatedAt = time.Now().UTC()
	return s.users.UpsertUser(ctx, *follower)
}

// UpdateProfileInput captures a profile create-or-edit action.
type UpdateProfileInput struct {
	UserID     string
	FullName   string
	AboutMe    string
	ProfileURL string
}

// UpdateProfile creates the user record on first use (profile setup) and
// overwrites display fields afterwards. Follow and participation lists are
// never touched here.
func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*User, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, errors.New("full name is required")
	}

	now := time.Now().UTC()
	user, err := s.users.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &User{ID: input.UserID, CreatedAt: now}
	}

	user.FullName = input.FullName
	user.AboutMe = input.AboutMe
	user.ProfileURL = input.ProfileURL
	user.UpdatedAt = now

	if err := s.users.UpsertUser(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser fetches a user by ID.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	return s.getUser(ctx, userID)
}

// ListUsers fetches the full user roster.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.users.ListAllUsers(ctx)
}

// Preferences returns the caller's saved filters, or the unrestricted defaults
// when nothing was ever saved.
func (s *Service) Preferences(ctx context.Context, userID string) (Preferences, error) {
	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	if prefs == nil {
		return DefaultPreferences(), nil
	}
	return *prefs, nil
}

// SetPreferences validates and saves the caller's filters.
func (s *Service) SetPreferences(ctx context.Context, userID string, prefs Preferences) error {
	if len(prefs.Sports) == 0 {
		return errors.New("at least one sport must be selected")
	}
	for _, sport := range prefs.Sports {
		if !sport.Valid() {
			return fmt.Errorf("unknown sport %q", sport)
		}
	}
	if !prefs.RadiusUnlimited && prefs.RadiusKm <= 0 {
		return errors.New("radius must be > 0 km or unlimited")
	}
	return s.prefs.SetPreferences(ctx, userID, prefs)
}

// ClearPreferences restores the defaults by deleting the saved row.
func (s *Service) ClearPreferences(ctx context.Context, userID string) error {
	return s.prefs.ClearPreferences(ctx, userID)
}

func (s *Service) getUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
