package roster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/sportmeet/internal/domain"
)

func TestStoreLoadedOnlyAfterSeed(t *testing.T) {
	store := NewStore()

	users, loaded := store.Snapshot()
	require.False(t, loaded)
	require.Empty(t, users)

	// Events before the seed still land, but the store stays unloaded.
	store.Apply(domain.User{ID: "u1", FullName: "Ada Lovelace"})
	_, loaded = store.Snapshot()
	require.False(t, loaded)

	store.Seed(nil)
	users, loaded = store.Snapshot()
	require.True(t, loaded)
	require.Empty(t, users)
}

func TestStoreSeedReplacesAndOrders(t *testing.T) {
	store := NewStore()
	store.Apply(domain.User{ID: "stale"})

	store.Seed([]domain.User{
		{ID: "u2", FullName: "Grace Hopper"},
		{ID: "u1", FullName: "Ada Lovelace"},
	})

	users, loaded := store.Snapshot()
	require.True(t, loaded)
	require.Len(t, users, 2)
	require.Equal(t, "u2", users[0].ID)
	require.Equal(t, "u1", users[1].ID)
}

func TestStoreApplyUpsertsInPlace(t *testing.T) {
	store := NewStore()
	store.Seed([]domain.User{
		{ID: "u1", FullName: "Ada Lovelace"},
		{ID: "u2", FullName: "Grace Hopper"},
	})

	store.Apply(domain.User{ID: "u1", FullName: "Ada King"})
	store.Apply(domain.User{ID: "u3", FullName: "Alan Turing"})

	users, _ := store.Snapshot()
	require.Len(t, users, 3)
	require.Equal(t, "Ada King", users[0].FullName)
	require.Equal(t, "u3", users[2].ID)
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	store := NewStore()
	store.Seed([]domain.User{{ID: "u1", FullName: "Ada Lovelace"}})

	users, _ := store.Snapshot()
	users[0].FullName = "mutated"

	fresh, _ := store.Snapshot()
	require.Equal(t, "Ada Lovelace", fresh[0].FullName)
}

func TestStoreSubscribeAndCancel(t *testing.T) {
	store := NewStore()

	var got [][]domain.User
	cancel := store.Subscribe(func(users []domain.User) {
		got = append(got, users)
	})

	store.Seed([]domain.User{{ID: "u1"}})
	store.Apply(domain.User{ID: "u2"})
	require.Len(t, got, 2)
	require.Len(t, got[1], 2)

	cancel()
	store.Apply(domain.User{ID: "u3"})
	require.Len(t, got, 2)
}
