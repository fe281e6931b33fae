// Package events defines the payloads published through the outbox.
package events

import "time"

// ActivityCreated is emitted when an organizer posts a new activity.
type ActivityCreated struct {
	ActivityID     string    `json:"activity_id"`
	Sport          string    `json:"sport"`
	StartDate      time.Time `json:"start_date"`
	Level          string    `json:"level"`
	SpotCount      int       `json:"spot_count"`
	PricePerPerson float64   `json:"price_per_person"`
	OrganizerID    string    `json:"organizer_id"`
	Address        string    `json:"address"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
}

// ActivityCanceled is emitted when the organizer flips the cancellation flag.
type ActivityCanceled struct {
	ActivityID  string    `json:"activity_id"`
	OrganizerID string    `json:"organizer_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// UserUpserted carries the full user record. Projections such as the live
// roster apply it directly without a second read.
type UserUpserted struct {
	UserID       string    `json:"user_id"`
	ProfileURL   string    `json:"profile_url,omitempty"`
	FullName     string    `json:"full_name"`
	AboutMe      string    `json:"about_me,omitempty"`
	FollowingIDs []string  `json:"following_ids"`
	ActivityIDs  []string  `json:"activity_ids"`
	UpdatedAt    time.Time `json:"updated_at"`
}
