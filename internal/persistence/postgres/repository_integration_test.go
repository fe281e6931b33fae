//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/sportmeet/internal/domain"
)

func TestRepositoryActivityLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := setupDatabase(t, ctx)

	repo := NewRepository(pool)

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Microsecond)
	activity := domain.Activity{
		ID:          uuid.NewString(),
		Sport:       domain.SportTennis,
		StartDate:   start,
		Location:    domain.Location{Address: "Court 5", Latitude: 52.52, Longitude: 13.405},
		Level:       domain.LevelMedium,
		SpotCount:   4,
		OrganizerID: "org-1",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	require.NoError(t, repo.CreateActivity(ctx, activity))

	stored, err := repo.GetActivity(ctx, activity.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, activity.ID, stored.ID)
	require.True(t, start.Equal(stored.StartDate))
	require.False(t, stored.IsCanceled)

	require.NoError(t, repo.SetActivityCanceled(ctx, activity.ID, time.Now().UTC()))
	stored, err = repo.GetActivity(ctx, activity.ID)
	require.NoError(t, err)
	require.True(t, stored.IsCanceled)

	require.ErrorIs(t, repo.SetActivityCanceled(ctx, uuid.NewString(), time.Now().UTC()), domain.ErrActivityNotFound)

	// Both writes should have left outbox rows behind.
	var outboxRows int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1`, activity.ID).Scan(&outboxRows))
	require.Equal(t, 2, outboxRows)
}

func TestRepositoryActivityPagination(t *testing.T) {
	ctx := context.Background()
	pool := setupDatabase(t, ctx)

	repo := NewRepository(pool)

	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateActivity(ctx, domain.Activity{
			ID:          uuid.NewString(),
			Sport:       domain.SportRunning,
			StartDate:   base.Add(time.Duration(i) * time.Hour),
			Location:    domain.Location{Address: "Track"},
			Level:       domain.LevelAll,
			SpotCount:   10,
			OrganizerID: "org-1",
			CreatedAt:   time.Now().UTC(),
			UpdatedAt:   time.Now().UTC(),
		}))
	}

	page, cursor, err := repo.ListActivities(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, cursor)

	seen := map[string]bool{page[0].ID: true, page[1].ID: true}
	for cursor != nil {
		page, cursor, err = repo.ListActivities(ctx, cursor, 2)
		require.NoError(t, err)
		for _, activity := range page {
			require.False(t, seen[activity.ID], "duplicate across pages")
			seen[activity.ID] = true
		}
	}
	require.Len(t, seen, 5)
}

func TestRepositoryUsersAndPreferences(t *testing.T) {
	ctx := context.Background()
	pool := setupDatabase(t, ctx)

	repo := NewRepository(pool)

	user := domain.User{
		ID:           "u1",
		FullName:     "Ada Lovelace",
		FollowingIDs: []string{"u2"},
		ActivityIDs:  []string{},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.UpsertUser(ctx, user))

	user.FullName = "Ada King"
	user.UpdatedAt = user.UpdatedAt.Add(time.Second)
	require.NoError(t, repo.UpsertUser(ctx, user))

	stored, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "Ada King", stored.FullName)
	require.Equal(t, []string{"u2"}, stored.FollowingIDs)

	var dedupeKeys []string
	rows, err := pool.Query(ctx, `SELECT dedupe_key FROM outbox WHERE aggregate_id = 'u1' ORDER BY event_id`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var key string
		require.NoError(t, rows.Scan(&key))
		dedupeKeys = append(dedupeKeys, key)
	}
	require.NoError(t, rows.Err())
	require.Len(t, dedupeKeys, 2, "each revision enqueues one event")
	require.NotEqual(t, dedupeKeys[0], dedupeKeys[1])
	for _, key := range dedupeKeys {
		require.True(t, strings.HasPrefix(key, "u1:user.upserted:"), key)
	}

	missing, err := repo.GetUser(ctx, "ghost")
	require.NoError(t, err)
	require.Nil(t, missing)

	prefs, err := repo.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, prefs)

	saved := domain.Preferences{Sports: []domain.Sport{domain.SportTennis}, RadiusKm: 25}
	require.NoError(t, repo.SetPreferences(ctx, "u1", saved))

	prefs, err = repo.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, prefs)
	require.Equal(t, saved.Sports, prefs.Sports)
	require.Equal(t, 25.0, prefs.RadiusKm)

	require.NoError(t, repo.ClearPreferences(ctx, "u1"))
	prefs, err = repo.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, prefs)
}

func setupDatabase(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("sportmeet"),
		postgrescontainer.WithUsername("sportmeet"),
		postgrescontainer.WithPassword("sportmeet"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
		"../../../db/postgres/migrations/0002_outbox_dlq_retry.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
