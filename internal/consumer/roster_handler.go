package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"example.com/sportmeet/internal/domain"
	"example.com/sportmeet/internal/events"
	"example.com/sportmeet/internal/roster"
)

// RosterHandler projects user.upserted events into the live roster store,
// keeping feed computations current without re-reading Postgres.
type RosterHandler struct {
	store *roster.Store
}

// NewRosterHandler constructs a handler writing to the provided store.
func NewRosterHandler(store *roster.Store) *RosterHandler {
	return &RosterHandler{store: store}
}

// Handle applies a user snapshot to the roster. Events of other types are
// ignored so the handler can share a topic with future user events.
func (h *RosterHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != "user.upserted" {
		return nil
	}

	var event events.UserUpserted
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("decode user.upserted: %w", err)
	}

	h.store.Apply(domain.User{
		ID:           event.UserID,
		ProfileURL:   event.ProfileURL,
		FullName:     event.FullName,
		AboutMe:      event.AboutMe,
		FollowingIDs: event.FollowingIDs,
		ActivityIDs:  event.ActivityIDs,
		UpdatedAt:    event.UpdatedAt,
	})
	return nil
}
