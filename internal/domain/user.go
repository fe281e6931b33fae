package domain

import "time"

// User represents one registered person. The ID equals the authentication
// subject. FollowingIDs and ActivityIDs carry set semantics (no duplicates).
type User struct {
	ID           string
	ProfileURL   string
	FullName     string
	AboutMe      string
	FollowingIDs []string
	ActivityIDs  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Participates reports whether the user joined the given activity.
func (u User) Participates(activityID string) bool {
	return contains(u.ActivityIDs, activityID)
}

// Follows reports whether the user follows the given user.
func (u User) Follows(userID string) bool {
	return contains(u.FollowingIDs, userID)
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// addID appends id unless already present, preserving order.
func addID(ids []string, id string) []string {
	if contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// removeID drops id from the list, preserving order of the rest. The result
// never shares a backing array with ids, so previously returned snapshots
// stay intact.
func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
