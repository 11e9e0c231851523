package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/example/tour-matching/internal/models"
)

// PostgresStore implements Store on top of Postgres via sqlx.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }

// DB exposes the underlying handle for migrations.
func (p *PostgresStore) DB() *sqlx.DB { return p.db }

func (p *PostgresStore) AvailableDrivers(ctx context.Context) ([]models.Driver, error) {
	var drivers []models.Driver
	query := `SELECT * FROM drivers WHERE is_available = true ORDER BY created_at, id`
	if err := p.db.SelectContext(ctx, &drivers, query); err != nil {
		return nil, fmt.Errorf("list available drivers: %w", err)
	}
	return drivers, nil
}

func (p *PostgresStore) ClaimDriver(ctx context.Context, driverID string) (bool, error) {
	// Conditional flip guards against two dispatches claiming the same driver.
	query := `UPDATE drivers SET is_available = false, updated_at = now()
	          WHERE id = $1 AND is_available = true`
	res, err := p.db.ExecContext(ctx, query, driverID)
	if err != nil {
		return false, fmt.Errorf("claim driver %s: %w", driverID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p *PostgresStore) AssignRide(ctx context.Context, rideRequestID, driverID string) (*models.RideRequest, error) {
	var ride models.RideRequest
	query := `UPDATE ride_requests SET driver_id = $1, status = $2, updated_at = now()
	          WHERE id = $3 RETURNING *`
	err := p.db.GetContext(ctx, &ride, query, driverID, models.RideStatusDriverAssigned, rideRequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRideNotFound
		}
		return nil, fmt.Errorf("assign ride %s: %w", rideRequestID, err)
	}
	return &ride, nil
}

func (p *PostgresStore) UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64) error {
	query := `UPDATE drivers SET location_lat = $1, location_lng = $2, updated_at = now() WHERE id = $3`
	if _, err := p.db.ExecContext(ctx, query, lat, lng, driverID); err != nil {
		return fmt.Errorf("update driver location %s: %w", driverID, err)
	}
	return nil
}

func (p *PostgresStore) EmbeddingByUser(ctx context.Context, userID string) (*models.UserEmbedding, error) {
	var emb models.UserEmbedding
	query := `SELECT * FROM user_embeddings WHERE user_id = $1`
	if err := p.db.GetContext(ctx, &emb, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEmbeddingNotFound
		}
		return nil, fmt.Errorf("get embedding for user %s: %w", userID, err)
	}
	return &emb, nil
}

func (p *PostgresStore) OtherEmbeddings(ctx context.Context, userID string) ([]models.UserEmbedding, error) {
	var embs []models.UserEmbedding
	// Ordered so equal-score candidates rank the same across runs.
	query := `SELECT * FROM user_embeddings WHERE user_id <> $1 ORDER BY created_at, id`
	if err := p.db.SelectContext(ctx, &embs, query, userID); err != nil {
		return nil, fmt.Errorf("list other embeddings: %w", err)
	}
	return embs, nil
}

func (p *PostgresStore) UpsertEmbedding(ctx context.Context, emb *models.UserEmbedding) error {
	query := `
		INSERT INTO user_embeddings (user_id, embedding_data, interests_text)
		VALUES (:user_id, :embedding_data, :interests_text)
		ON CONFLICT (user_id) DO UPDATE
		SET embedding_data = EXCLUDED.embedding_data,
		    interests_text = EXCLUDED.interests_text,
		    updated_at = now()`
	if _, err := p.db.NamedExecContext(ctx, query, emb); err != nil {
		return fmt.Errorf("upsert embedding for user %s: %w", emb.UserID, err)
	}
	return nil
}

func (p *PostgresStore) ReplaceMatches(ctx context.Context, userID string, matches []models.Match) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace matches: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete old matches: %w", err)
	}
	if len(matches) > 0 {
		query := `
			INSERT INTO matches (id, user_id, matched_user_id, similarity_score, match_reason, status)
			VALUES (:id, :user_id, :matched_user_id, :similarity_score, :match_reason, :status)`
		if _, err := tx.NamedExecContext(ctx, query, matches); err != nil {
			return fmt.Errorf("insert matches: %w", err)
		}
	}
	return tx.Commit()
}

func (p *PostgresStore) ProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	var prof models.Profile
	query := `SELECT * FROM profiles WHERE user_id = $1`
	if err := p.db.GetContext(ctx, &prof, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile for user %s: %w", userID, err)
	}
	return &prof, nil
}

func (p *PostgresStore) ProfilesByUserIDs(ctx context.Context, userIDs []string) (map[string]models.Profile, error) {
	out := make(map[string]models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM profiles WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	query = p.db.Rebind(query)
	var profiles []models.Profile
	if err := p.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("batch get profiles: %w", err)
	}
	for _, prof := range profiles {
		out[prof.UserID] = prof
	}
	return out, nil
}
