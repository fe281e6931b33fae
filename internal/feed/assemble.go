package feed

import (
	"math"
	"sort"

	"example.com/sportmeet/internal/domain"
	"example.com/sportmeet/internal/geo"
)

// Assemble joins the activity collection with the user roster, the current
// user, and the device position into an enriched list sorted ascending by
// start time. The sort is stable: activities sharing a start time keep their
// input order across repeated calls.
func Assemble(snap Snapshot) Result {
	if !snap.ActivitiesLoaded || !snap.UsersLoaded || !snap.PositionResolved {
		return Result{State: StateLoading}
	}

	currentUser, ok := findUser(snap.Users, snap.CurrentUserID)
	if !ok {
		return Result{State: StateUnavailable}
	}

	if len(snap.Activities) == 0 {
		return Result{State: StateReady, Items: []Item{}}
	}

	items := make([]Item, 0, len(snap.Activities))
	for _, activity := range snap.Activities {
		items = append(items, enrich(activity, snap, currentUser))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartDate.Before(items[j].StartDate)
	})

	return Result{State: StateReady, Items: items}
}

func enrich(activity domain.Activity, snap Snapshot, currentUser domain.User) Item {
	item := Item{
		Activity:                     activity,
		IsOngoing:                    !activity.StartDate.After(snap.Now),
		ParticipantIDs:               []string{},
		FollowedParticipantFullNames: []string{},
	}

	if snap.Position != nil {
		distance := roundTo2(geo.DistanceKm(
			snap.Position.Latitude,
			snap.Position.Longitude,
			activity.Location.Latitude,
			activity.Location.Longitude,
		))
		item.Distance = &distance
	}

	// Roster order carries through to both derived lists.
	for _, user := range snap.Users {
		if !user.Participates(activity.ID) {
			continue
		}
		item.ParticipantIDs = append(item.ParticipantIDs, user.ID)
		if currentUser.Follows(user.ID) {
			item.FollowedParticipantFullNames = append(item.FollowedParticipantFullNames, user.FullName)
		}
	}

	item.SpotsLeft = activity.SpotCount - len(item.ParticipantIDs)
	return item
}

func findUser(users []domain.User, id string) (domain.User, bool) {
	if id == "" {
		return domain.User{}, false
	}
	for _, user := range users {
		if user.ID == id {
			return user, true
		}
	}
	return domain.User{}, false
}

func roundTo2(km float64) float64 {
	return math.Round(km*100) / 100
}
