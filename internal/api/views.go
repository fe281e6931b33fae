package api

import (
	"errors"
	"fmt"
	"time"

	"example.com/sportmeet/internal/domain"
	"example.com/sportmeet/internal/feed"
)

// CreateActivityRequest is the JSON body accepted on activity creation.
type CreateActivityRequest struct {
	Sport             string       `json:"sport"`
	StartDate         time.Time    `json:"start_date"`
	EndDate           *time.Time   `json:"end_date,omitempty"`
	Location          LocationView `json:"location"`
	Level             string       `json:"level"`
	SpotCount         int          `json:"spot_count"`
	PricePerPerson    float64      `json:"price_per_person"`
	AdditionalDetails string       `json:"additional_details,omitempty"`
}

// Validate rejects payloads the domain layer would refuse anyway, with
// friendlier messages for the common mistakes.
func (r CreateActivityRequest) Validate() error {
	if r.Sport == "" {
		return errors.New("sport is required")
	}
	if !domain.Sport(r.Sport).Valid() {
		return fmt.Errorf("unknown sport %q", r.Sport)
	}
	if r.StartDate.IsZero() {
		return errors.New("start_date is required")
	}
	if r.Location.Address == "" {
		return errors.New("location.address is required")
	}
	if r.SpotCount <= 0 {
		return errors.New("spot_count must be positive")
	}
	return nil
}

func (r CreateActivityRequest) toInput(organizerID string) domain.CreateActivityInput {
	return domain.CreateActivityInput{
		Sport:     domain.Sport(r.Sport),
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Location: domain.Location{
			Address:   r.Location.Address,
			Latitude:  r.Location.Latitude,
			Longitude: r.Location.Longitude,
		},
		Level:             domain.Level(r.Level),
		SpotCount:         r.SpotCount,
		PricePerPerson:    r.PricePerPerson,
		AdditionalDetails: r.AdditionalDetails,
		OrganizerID:       organizerID,
	}
}

// LocationView mirrors domain.Location over the wire.
type LocationView struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ActivityView is the JSON representation of an activity.
type ActivityView struct {
	ID                string       `json:"id"`
	Sport             string       `json:"sport"`
	StartDate         time.Time    `json:"start_date"`
	EndDate           *time.Time   `json:"end_date,omitempty"`
	Location          LocationView `json:"location"`
	Level             string       `json:"level"`
	SpotCount         int          `json:"spot_count"`
	PricePerPerson    float64      `json:"price_per_person"`
	AdditionalDetails string       `json:"additional_details,omitempty"`
	OrganizerID       string       `json:"organizer_id"`
	IsCanceled        bool         `json:"is_canceled"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:        a.ID,
		Sport:     string(a.Sport),
		StartDate: a.StartDate,
		EndDate:   a.EndDate,
		Location: LocationView{
			Address:   a.Location.Address,
			Latitude:  a.Location.Latitude,
			Longitude: a.Location.Longitude,
		},
		Level:             string(a.Level),
		SpotCount:         a.SpotCount,
		PricePerPerson:    a.PricePerPerson,
		AdditionalDetails: a.AdditionalDetails,
		OrganizerID:       a.OrganizerID,
		IsCanceled:        a.IsCanceled,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// ListActivitiesResponse carries one page of activities.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// UserView is the JSON representation of a user profile.
type UserView struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	AboutMe      string    `json:"about_me,omitempty"`
	ProfileURL   string    `json:"profile_url,omitempty"`
	FollowingIDs []string  `json:"following_ids"`
	ActivityIDs  []string  `json:"activity_ids"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toUserView(u domain.User) UserView {
	return UserView{
		ID:           u.ID,
		FullName:     u.FullName,
		AboutMe:      u.AboutMe,
		ProfileURL:   u.ProfileURL,
		FollowingIDs: u.FollowingIDs,
		ActivityIDs:  u.ActivityIDs,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ListUsersResponse carries the full user directory.
type ListUsersResponse struct {
	Items []UserView `json:"items"`
}

// UpdateProfileRequest is the JSON body for profile setup and edits.
type UpdateProfileRequest struct {
	FullName   string `json:"full_name"`
	AboutMe    string `json:"about_me,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// PreferencesRequest is the JSON body for PUT /v1/filters.
type PreferencesRequest struct {
	Sports          []string `json:"sports"`
	RadiusKm        float64  `json:"radius_km"`
	RadiusUnlimited bool     `json:"radius_unlimited"`
}

func (r PreferencesRequest) toPreferences() domain.Preferences {
	sports := make([]domain.Sport, 0, len(r.Sports))
	for _, s := range r.Sports {
		sports = append(sports, domain.Sport(s))
	}
	return domain.Preferences{
		Sports:          sports,
		RadiusKm:        r.RadiusKm,
		RadiusUnlimited: r.RadiusUnlimited,
	}
}

// PreferencesView is the JSON representation of filter preferences.
type PreferencesView struct {
	Sports          []string `json:"sports"`
	RadiusKm        float64  `json:"radius_km"`
	RadiusUnlimited bool     `json:"radius_unlimited"`
}

func toPreferencesView(p domain.Preferences) PreferencesView {
	sports := make([]string, 0, len(p.Sports))
	for _, s := range p.Sports {
		sports = append(sports, string(s))
	}
	return PreferencesView{
		Sports:          sports,
		RadiusKm:        p.RadiusKm,
		RadiusUnlimited: p.RadiusUnlimited,
	}
}

// FeedItemView is one enriched feed entry.
type FeedItemView struct {
	ActivityView
	Distance                     *float64 `json:"distance_km,omitempty"`
	IsOngoing                    bool     `json:"is_ongoing"`
	SpotsLeft                    int      `json:"spots_left"`
	ParticipantIDs               []string `json:"participant_ids"`
	FollowedParticipantFullNames []string `json:"followed_participant_full_names"`
}

// FeedResponse reports the feed state alongside the items. The state is
// always delivered with HTTP 200; loading and unavailable are application
// conditions, not transport failures.
type FeedResponse struct {
	State string         `json:"state"`
	Items []FeedItemView `json:"items"`
}

func toFeedResponse(result feed.Result) FeedResponse {
	items := make([]FeedItemView, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, FeedItemView{
			ActivityView:                 toActivityView(item.Activity),
			Distance:                     item.Distance,
			IsOngoing:                    item.IsOngoing,
			SpotsLeft:                    item.SpotsLeft,
			ParticipantIDs:               item.ParticipantIDs,
			FollowedParticipantFullNames: item.FollowedParticipantFullNames,
		})
	}
	return FeedResponse{State: result.State.String(), Items: items}
}
