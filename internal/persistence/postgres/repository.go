// Package postgres provides pgx-backed persistence for activities, users,
// preferences, and the transactional outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/sportmeet/internal/domain"
	"example.com/sportmeet/internal/events"
	"example.com/sportmeet/internal/observability"
)

// Repository provides Postgres-backed persistence and records outbox events
// inside the same transaction as the write they describe.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const activityColumns = `activity_id, sport, start_date, end_date, address, latitude, longitude,
        level, spot_count, price_per_person, additional_details, organizer_id, is_canceled, created_at, updated_at`

// CreateActivity persists the activity and an activity.created outbox event.
func (r *Repository) CreateActivity(ctx context.Context, activity domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insertActivity = `INSERT INTO activities (` + activityColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	_, err = tx.Exec(ctx, insertActivity,
		activity.ID,
		activity.Sport,
		activity.StartDate,
		activity.EndDate,
		activity.Location.Address,
		activity.Location.Latitude,
		activity.Location.Longitude,
		activity.Level,
		activity.SpotCount,
		activity.PricePerPerson,
		activity.AdditionalDetails,
		activity.OrganizerID,
		activity.IsCanceled,
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, "activity", activity.ID, "activity.created", "", events.ActivityCreated{
		ActivityID:     activity.ID,
		Sport:          string(activity.Sport),
		StartDate:      activity.StartDate,
		Level:          string(activity.Level),
		SpotCount:      activity.SpotCount,
		PricePerPerson: activity.PricePerPerson,
		OrganizerID:    activity.OrganizerID,
		Address:        activity.Location.Address,
		Latitude:       activity.Location.Latitude,
		Longitude:      activity.Location.Longitude,
	}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordActivityPersisted(activity.UpdatedAt)
	return nil
}

// GetActivity returns the activity or nil when absent.
func (r *Repository) GetActivity(ctx context.Context, activityID string) (*domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities WHERE activity_id = $1`

	row := r.pool.QueryRow(ctx, query, activityID)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return activity, nil
}

// ListAllActivities returns the full activity collection ordered by start date.
func (r *Repository) ListAllActivities(ctx context.Context) ([]domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities ORDER BY start_date, activity_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		activity, scanErr := scanActivity(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		activities = append(activities, *activity)
	}
	return activities, rows.Err()
}

// ListActivities returns one page of activities with keyset pagination.
func (r *Repository) ListActivities(ctx context.Context, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + activityColumns + ` FROM activities`
	args := []interface{}{}
	if cursor != nil {
		query += ` WHERE (start_date, activity_id) > ($1, $2)`
		args = append(args, cursor.StartDate, cursor.ID)
	}
	query += fmt.Sprintf(` ORDER BY start_date, activity_id LIMIT %d`, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0, limit+1)
	for rows.Next() {
		activity, scanErr := scanActivity(rows)
		if scanErr != nil {
			return nil, nil, scanErr
		}
		activities = append(activities, *activity)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if len(activities) > limit {
		activities = activities[:limit]
		last := activities[len(activities)-1]
		next = &domain.Cursor{StartDate: last.StartDate, ID: last.ID}
	}
	return activities, next, nil
}

// SetActivityCanceled flips the cancellation flag and records an activity.canceled event.
func (r *Repository) SetActivityCanceled(ctx context.Context, activityID string, at time.Time) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	var organizerID string
	row := tx.QueryRow(ctx,
		`UPDATE activities SET is_canceled = TRUE, updated_at = $2 WHERE activity_id = $1 RETURNING organizer_id`,
		activityID, at)
	if err = row.Scan(&organizerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrActivityNotFound
		}
		return err
	}

	if err = insertOutbox(ctx, tx, "activity", activityID, "activity.canceled", "", events.ActivityCanceled{
		ActivityID:  activityID,
		OrganizerID: organizerID,
		OccurredAt:  at,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const userColumns = `user_id, profile_url, full_name, about_me, following_ids, activity_ids, created_at, updated_at`

// GetUser returns the user or nil when absent.
func (r *Repository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	row := r.pool.QueryRow(ctx, query, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// ListAllUsers returns the full roster in registration order.
func (r *Repository) ListAllUsers(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, user_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpsertUser writes the full user record plus a user.upserted outbox event.
// Callers bump UpdatedAt on every change; it doubles as the event revision in
// the outbox dedupe key.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const upsert = `INSERT INTO users (` + userColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (user_id) DO UPDATE SET
            profile_url = EXCLUDED.profile_url,
            full_name = EXCLUDED.full_name,
            about_me = EXCLUDED.about_me,
            following_ids = EXCLUDED.following_ids,
            activity_ids = EXCLUDED.activity_ids,
            updated_at = EXCLUDED.updated_at`

	_, err = tx.Exec(ctx, upsert,
		user.ID,
		user.ProfileURL,
		user.FullName,
		user.AboutMe,
		user.FollowingIDs,
		user.ActivityIDs,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, "user", user.ID, "user.upserted", user.UpdatedAt.UTC().Format(time.RFC3339Nano), events.UserUpserted{
		UserID:       user.ID,
		ProfileURL:   user.ProfileURL,
		FullName:     user.FullName,
		AboutMe:      user.AboutMe,
		FollowingIDs: user.FollowingIDs,
		ActivityIDs:  user.ActivityIDs,
		UpdatedAt:    user.UpdatedAt,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetPreferences returns saved filters or nil when the user never saved any.
func (r *Repository) GetPreferences(ctx context.Context, userID string) (*domain.Preferences, error) {
	const query = `SELECT sports, radius_km, radius_unlimited FROM preferences WHERE user_id = $1`

	var (
		sports    []string
		radiusKm  float64
		unlimited bool
	)
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&sports, &radiusKm, &unlimited); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	prefs := domain.Preferences{RadiusKm: radiusKm, RadiusUnlimited: unlimited}
	for _, sport := range sports {
		prefs.Sports = append(prefs.Sports, domain.Sport(sport))
	}
	return &prefs, nil
}

// SetPreferences saves the filters, replacing any previous row.
func (r *Repository) SetPreferences(ctx context.Context, userID string, prefs domain.Preferences) error {
	sports := make([]string, 0, len(prefs.Sports))
	for _, sport := range prefs.Sports {
		sports = append(sports, string(sport))
	}

	const upsert = `INSERT INTO preferences (user_id, sports, radius_km, radius_unlimited, updated_at)
        VALUES ($1,$2,$3,$4,NOW())
        ON CONFLICT (user_id) DO UPDATE SET
            sports = EXCLUDED.sports,
            radius_km = EXCLUDED.radius_km,
            radius_unlimited = EXCLUDED.radius_unlimited,
            updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, upsert, userID, sports, prefs.RadiusKm, prefs.RadiusUnlimited)
	return err
}

// ClearPreferences removes the saved row so defaults apply again.
func (r *Repository) ClearPreferences(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM preferences WHERE user_id = $1`, userID)
	return err
}

func insertOutbox(ctx context.Context, tx pgx.Tx, aggregateType, aggregateID, eventType, revision string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := EventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt, aggregateType, aggregateID, eventType, meta.Topic, meta.SchemaSubject, aggregateID, body,
		outboxDedupeKey(aggregateID, eventType, revision))
	return err
}

// outboxDedupeKey identifies a logical event, so a retried transaction cannot
// enqueue the same event twice. One-shot events (created, canceled) are keyed
// by the aggregate alone; repeatable events carry the record revision.
func outboxDedupeKey(aggregateID, eventType, revision string) string {
	key := aggregateID + ":" + eventType
	if revision != "" {
		key += ":" + revision
	}
	return key
}

// EventMeta binds an event type to its Kafka destination.
type EventMeta struct {
	Topic         string
	SchemaSubject string
}

// EventCatalog maps outbox event types to topics and schema subjects.
var EventCatalog = map[string]EventMeta{
	"activity.created":  {Topic: "activity_events", SchemaSubject: "activity_events-value"},
	"activity.canceled": {Topic: "activity_events", SchemaSubject: "activity_events-value"},
	"user.upserted":     {Topic: "user_events", SchemaSubject: "user_events-value"},
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row rowScanner) (*domain.Activity, error) {
	var activity domain.Activity
	err := row.Scan(
		&activity.ID,
		&activity.Sport,
		&activity.StartDate,
		&activity.EndDate,
		&activity.Location.Address,
		&activity.Location.Latitude,
		&activity.Location.Longitude,
		&activity.Level,
		&activity.SpotCount,
		&activity.PricePerPerson,
		&activity.AdditionalDetails,
		&activity.OrganizerID,
		&activity.IsCanceled,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.ProfileURL,
		&user.FullName,
		&user.AboutMe,
		&user.FollowingIDs,
		&user.ActivityIDs,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
