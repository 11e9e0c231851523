package store

import (
	"context"

	"github.com/example/tour-matching/internal/models"
)

// Store defines the persistence operations the dispatch and matching cores
// need. Both a Postgres implementation and an in-memory fake satisfy it, so
// services can be exercised without a database.
type Store interface {
	// AvailableDrivers returns all drivers currently flagged available, in a
	// stable order (Postgres: created_at ascending; memory: insertion order).
	// The order is the documented tie-break for equidistant drivers.
	AvailableDrivers(ctx context.Context) ([]models.Driver, error)

	// ClaimDriver atomically flips is_available from true to false. It returns
	// false with no error when the driver was already claimed by a concurrent
	// dispatch, in which case the caller moves on to the next candidate.
	ClaimDriver(ctx context.Context, driverID string) (bool, error)

	// AssignRide sets the ride request's driver reference and moves its status
	// to driver_assigned, returning the updated row.
	AssignRide(ctx context.Context, rideRequestID, driverID string) (*models.RideRequest, error)

	// UpdateDriverLocation overwrites a driver's coordinates.
	UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64) error

	// EmbeddingByUser returns the user's embedding row or
	// models.ErrEmbeddingNotFound.
	EmbeddingByUser(ctx context.Context, userID string) (*models.UserEmbedding, error)

	// OtherEmbeddings returns every embedding row except the given user's.
	OtherEmbeddings(ctx context.Context, userID string) ([]models.UserEmbedding, error)

	// UpsertEmbedding creates or overwrites the user's embedding row.
	UpsertEmbedding(ctx context.Context, emb *models.UserEmbedding) error

	// ReplaceMatches deletes all existing match rows for userID and inserts
	// the given set in a single transaction. An empty set still deletes.
	ReplaceMatches(ctx context.Context, userID string, matches []models.Match) error

	// ProfileByUser returns the user's profile or nil when absent.
	ProfileByUser(ctx context.Context, userID string) (*models.Profile, error)

	// ProfilesByUserIDs performs one batched lookup and returns the found
	// profiles keyed by user id. Missing ids are simply absent from the map.
	ProfilesByUserIDs(ctx context.Context, userIDs []string) (map[string]models.Profile, error)
}
