package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/sportmeet/internal/domain"
)

func readyResult(items ...Item) Result {
	return Result{State: StateReady, Items: items}
}

func feedItem(id string, sport domain.Sport, mutate ...func(*Item)) Item {
	item := Item{
		Activity: domain.Activity{
			ID:        id,
			Sport:     sport,
			StartDate: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
			SpotCount: 10,
		},
		ParticipantIDs:               []string{},
		FollowedParticipantFullNames: []string{},
	}
	for _, m := range mutate {
		m(&item)
	}
	return item
}

func withDistance(km float64) func(*Item) {
	return func(i *Item) { i.Distance = &km }
}

func withParticipants(ids ...string) func(*Item) {
	return func(i *Item) { i.ParticipantIDs = ids }
}

func ongoing(i *Item)  { i.IsOngoing = true }
func canceled(i *Item) { i.IsCanceled = true }

func allowAll() *domain.Preferences {
	prefs := domain.DefaultPreferences()
	return &prefs
}

func TestParseViewMode(t *testing.T) {
	mode, err := ParseViewMode("")
	require.NoError(t, err)
	require.Equal(t, ViewModeAll, mode)

	for _, valid := range []string{"all", "following", "mine"} {
		mode, err := ParseViewMode(valid)
		require.NoError(t, err)
		require.Equal(t, ViewMode(valid), mode)
	}

	_, err = ParseViewMode("bogus")
	require.Error(t, err)
}

func TestFilterPassesThroughNonReadyResults(t *testing.T) {
	for _, state := range []State{StateLoading, StateUnavailable} {
		result := Filter(Result{State: state}, Selection{Prefs: allowAll()})
		require.Equal(t, state, result.State)
	}
}

func TestFilterNilPreferencesYieldsLoading(t *testing.T) {
	result := Filter(readyResult(feedItem("a", domain.SportTennis)), Selection{View: ViewModeAll})
	require.Equal(t, StateLoading, result.State)
}

func TestFilterBySport(t *testing.T) {
	prefs := &domain.Preferences{
		Sports:          []domain.Sport{domain.SportTennis},
		RadiusUnlimited: true,
	}

	result := Filter(readyResult(
		feedItem("keep", domain.SportTennis),
		feedItem("drop", domain.SportFootball),
	), Selection{Prefs: prefs, View: ViewModeAll})

	require.Equal(t, StateReady, result.State)
	require.Len(t, result.Items, 1)
	require.Equal(t, "keep", result.Items[0].ID)
}

func TestFilterByRadius(t *testing.T) {
	prefs := &domain.Preferences{Sports: domain.AllSports(), RadiusKm: 10}

	result := Filter(readyResult(
		feedItem("near", domain.SportTennis, withDistance(9.99)),
		feedItem("edge", domain.SportTennis, withDistance(10)),
		feedItem("far", domain.SportTennis, withDistance(10.01)),
		feedItem("unknown", domain.SportTennis),
	), Selection{Prefs: prefs, View: ViewModeAll})

	ids := itemIDs(result.Items)
	require.Equal(t, []string{"near", "edge", "unknown"}, ids)
}

func TestFilterUnlimitedRadiusKeepsEverything(t *testing.T) {
	prefs := &domain.Preferences{Sports: domain.AllSports(), RadiusKm: 1, RadiusUnlimited: true}

	result := Filter(readyResult(
		feedItem("far", domain.SportTennis, withDistance(9000)),
		feedItem("unknown", domain.SportTennis),
	), Selection{Prefs: prefs, View: ViewModeAll})

	require.Len(t, result.Items, 2)
}

func TestFilterAllViewDropsOngoingAndCanceled(t *testing.T) {
	result := Filter(readyResult(
		feedItem("upcoming", domain.SportTennis),
		feedItem("started", domain.SportTennis, ongoing),
		feedItem("gone", domain.SportTennis, canceled),
	), Selection{Prefs: allowAll(), View: ViewModeAll})

	require.Equal(t, []string{"upcoming"}, itemIDs(result.Items))
}

func TestFilterFollowingViewRequiresFollowedParticipants(t *testing.T) {
	withNames := feedItem("friends", domain.SportTennis)
	withNames.FollowedParticipantFullNames = []string{"Grace Hopper"}

	result := Filter(readyResult(
		withNames,
		feedItem("strangers", domain.SportTennis),
		feedItem("ongoing-friends", domain.SportTennis, ongoing),
	), Selection{Prefs: allowAll(), View: ViewModeFollowing})

	require.Equal(t, []string{"friends"}, itemIDs(result.Items))
}

func TestFilterMineViewPartitionsWithoutResorting(t *testing.T) {
	// Joined: one ongoing, one canceled, one upcoming. The upcoming entry
	// moves ahead of the others even though it assembled last.
	result := Filter(readyResult(
		feedItem("mine-ongoing", domain.SportTennis, ongoing, withParticipants("me")),
		feedItem("mine-canceled", domain.SportTennis, canceled, withParticipants("me")),
		feedItem("not-mine", domain.SportTennis),
		feedItem("mine-upcoming", domain.SportTennis, withParticipants("me")),
	), Selection{Prefs: allowAll(), View: ViewModeMine, CurrentUserID: "me"})

	require.Equal(t, []string{"mine-upcoming", "mine-ongoing", "mine-canceled"}, itemIDs(result.Items))
}

func TestFilterIsIdempotent(t *testing.T) {
	sel := Selection{Prefs: allowAll(), View: ViewModeAll}
	first := Filter(readyResult(
		feedItem("a", domain.SportTennis),
		feedItem("b", domain.SportFootball, ongoing),
	), sel)
	second := Filter(first, sel)

	require.Equal(t, first, second)
}

func itemIDs(items []Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
