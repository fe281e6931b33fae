package feed

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/sportmeet/internal/domain"
	"example.com/sportmeet/internal/geo"
)

var assembleNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func baseSnapshot() Snapshot {
	return Snapshot{
		Activities:       []domain.Activity{},
		ActivitiesLoaded: true,
		Users: []domain.User{
			{ID: "user-1", FullName: "Ada Lovelace", FollowingIDs: []string{"user-2"}},
			{ID: "user-2", FullName: "Grace Hopper"},
			{ID: "user-3", FullName: "Alan Turing"},
		},
		UsersLoaded:      true,
		CurrentUserID:    "user-1",
		PositionResolved: true,
		Now:              assembleNow,
	}
}

func activityAt(id string, start time.Time) domain.Activity {
	return domain.Activity{
		ID:        id,
		Sport:     domain.SportFootball,
		StartDate: start,
		Location:  domain.Location{Address: "somewhere", Latitude: 52.52, Longitude: 13.405},
		Level:     domain.LevelMedium,
		SpotCount: 10,
	}
}

func TestAssembleLoadingUntilAllSourcesResolve(t *testing.T) {
	cases := map[string]func(*Snapshot){
		"activities pending": func(s *Snapshot) { s.ActivitiesLoaded = false },
		"users pending":      func(s *Snapshot) { s.UsersLoaded = false },
		"position pending":   func(s *Snapshot) { s.PositionResolved = false },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			snap := baseSnapshot()
			mutate(&snap)

			result := Assemble(snap)
			require.Equal(t, StateLoading, result.State)
			require.Nil(t, result.Items)
		})
	}
}

func TestAssembleUnavailableWhenCurrentUserMissing(t *testing.T) {
	snap := baseSnapshot()
	snap.CurrentUserID = "stranger"

	result := Assemble(snap)
	require.Equal(t, StateUnavailable, result.State)
}

func TestAssembleEmptyCollectionIsReady(t *testing.T) {
	result := Assemble(baseSnapshot())
	require.Equal(t, StateReady, result.State)
	require.NotNil(t, result.Items)
	require.Empty(t, result.Items)
}

func TestAssembleSortsByStartDateStable(t *testing.T) {
	shared := assembleNow.Add(48 * time.Hour)
	snap := baseSnapshot()
	snap.Activities = []domain.Activity{
		activityAt("late", assembleNow.Add(72*time.Hour)),
		activityAt("tie-first", shared),
		activityAt("early", assembleNow.Add(24*time.Hour)),
		activityAt("tie-second", shared),
	}

	result := Assemble(snap)
	require.Equal(t, StateReady, result.State)

	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.ID)
	}
	require.Equal(t, []string{"early", "tie-first", "tie-second", "late"}, ids)
}

func TestAssembleDistanceRoundedAndNilWithoutPosition(t *testing.T) {
	snap := baseSnapshot()
	snap.Activities = []domain.Activity{activityAt("a1", assembleNow.Add(time.Hour))}
	snap.Position = &geo.Position{Latitude: 48.8566, Longitude: 2.3522}

	result := Assemble(snap)
	require.Len(t, result.Items, 1)
	require.NotNil(t, result.Items[0].Distance)
	// Paris to Berlin, rounded to two decimals.
	require.InDelta(t, 877.46, *result.Items[0].Distance, 0.5)
	got := *result.Items[0].Distance
	require.Equal(t, math.Round(got*100)/100, got)

	snap.Position = nil
	result = Assemble(snap)
	require.Len(t, result.Items, 1)
	require.Nil(t, result.Items[0].Distance)
}

func TestAssembleOngoingFlag(t *testing.T) {
	snap := baseSnapshot()
	snap.Activities = []domain.Activity{
		activityAt("past", assembleNow.Add(-time.Hour)),
		activityAt("exact", assembleNow),
		activityAt("future", assembleNow.Add(time.Hour)),
	}

	result := Assemble(snap)
	byID := indexItems(result.Items)
	require.True(t, byID["past"].IsOngoing)
	require.True(t, byID["exact"].IsOngoing)
	require.False(t, byID["future"].IsOngoing)
}

func TestAssembleParticipantsFollowRosterOrder(t *testing.T) {
	snap := baseSnapshot()
	snap.Users = []domain.User{
		{ID: "user-3", FullName: "Alan Turing", ActivityIDs: []string{"a1"}},
		{ID: "user-1", FullName: "Ada Lovelace", FollowingIDs: []string{"user-2", "user-3"}},
		{ID: "user-2", FullName: "Grace Hopper", ActivityIDs: []string{"a1"}},
	}
	snap.Activities = []domain.Activity{activityAt("a1", assembleNow.Add(time.Hour))}

	result := Assemble(snap)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	require.Equal(t, []string{"user-3", "user-2"}, item.ParticipantIDs)
	require.Equal(t, []string{"Alan Turing", "Grace Hopper"}, item.FollowedParticipantFullNames)
}

func TestAssembleSpotsLeftNotClamped(t *testing.T) {
	joinAll := func(ids ...string) []domain.User {
		users := make([]domain.User, 0, len(ids))
		for _, id := range ids {
			users = append(users, domain.User{ID: id, FullName: id, ActivityIDs: []string{"a1"}})
		}
		return users
	}

	cases := []struct {
		name      string
		spotCount int
		joined    int
		want      int
	}{
		{name: "spots remain", spotCount: 10, joined: 3, want: 7},
		{name: "full", spotCount: 3, joined: 3, want: 0},
		{name: "overbooked goes negative", spotCount: 2, joined: 3, want: -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := baseSnapshot()
			snap.Users = append([]domain.User{{ID: "viewer", FullName: "Viewer"}},
				joinAll(participantIDs(tc.joined)...)...)
			snap.CurrentUserID = "viewer"

			activity := activityAt("a1", assembleNow.Add(time.Hour))
			activity.SpotCount = tc.spotCount
			snap.Activities = []domain.Activity{activity}

			result := Assemble(snap)
			require.Len(t, result.Items, 1)
			require.Equal(t, tc.want, result.Items[0].SpotsLeft)
		})
	}
}

func participantIDs(n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, "p-"+string(rune('a'+i)))
	}
	return ids
}

func indexItems(items []Item) map[string]Item {
	byID := make(map[string]Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID
}
