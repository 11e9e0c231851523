package store

import (
	"context"
	"sync"
	"time"

	"github.com/example/tour-matching/internal/models"
)

// MemoryStore is a mutex-guarded in-memory Store used for local runs and
// tests. Drivers and embeddings keep insertion order so the dispatch and
// match tie-breaks are deterministic.
type MemoryStore struct {
	mu         sync.RWMutex
	drivers    []models.Driver
	rides      map[string]models.RideRequest
	embeddings map[string]models.UserEmbedding // keyed by user id
	embedOrder []string                        // user ids in first-upsert order
	matches    map[string][]models.Match       // keyed by source user id
	profiles   map[string]models.Profile       // keyed by user id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rides:      make(map[string]models.RideRequest),
		embeddings: make(map[string]models.UserEmbedding),
		matches:    make(map[string][]models.Match),
		profiles:   make(map[string]models.Profile),
	}
}

func (m *MemoryStore) AddDriver(d models.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers = append(m.drivers, d)
}

func (m *MemoryStore) AddRide(r models.RideRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[r.ID] = r
}

func (m *MemoryStore) AddProfile(p models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
}

func (m *MemoryStore) AvailableDrivers(ctx context.Context) ([]models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if d.IsAvailable {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemoryStore) ClaimDriver(ctx context.Context, driverID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.drivers {
		if m.drivers[i].ID == driverID {
			if !m.drivers[i].IsAvailable {
				return false, nil
			}
			m.drivers[i].IsAvailable = false
			m.drivers[i].UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) AssignRide(ctx context.Context, rideRequestID, driverID string) (*models.RideRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[rideRequestID]
	if !ok {
		return nil, models.ErrRideNotFound
	}
	id := driverID
	r.DriverID = &id
	r.Status = models.RideStatusDriverAssigned
	r.UpdatedAt = time.Now()
	m.rides[rideRequestID] = r
	return &r, nil
}

func (m *MemoryStore) UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.drivers {
		if m.drivers[i].ID == driverID {
			m.drivers[i].LocationLat = &lat
			m.drivers[i].LocationLng = &lng
			m.drivers[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

func (m *MemoryStore) EmbeddingByUser(ctx context.Context, userID string) (*models.UserEmbedding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.embeddings[userID]
	if !ok {
		return nil, models.ErrEmbeddingNotFound
	}
	return &e, nil
}

func (m *MemoryStore) OtherEmbeddings(ctx context.Context, userID string) ([]models.UserEmbedding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.UserEmbedding, 0, len(m.embeddings))
	for _, id := range m.embedOrder {
		if id != userID {
			out = append(out, m.embeddings[id])
		}
	}
	return out, nil
}

func (m *MemoryStore) UpsertEmbedding(ctx context.Context, emb *models.UserEmbedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	emb.UpdatedAt = time.Now()
	if _, ok := m.embeddings[emb.UserID]; !ok {
		m.embedOrder = append(m.embedOrder, emb.UserID)
	}
	m.embeddings[emb.UserID] = *emb
	return nil
}

func (m *MemoryStore) ReplaceMatches(ctx context.Context, userID string, matches []models.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.matches, userID)
	if len(matches) > 0 {
		m.matches[userID] = append([]models.Match(nil), matches...)
	}
	return nil
}

// MatchesByUser exposes stored matches for assertions in tests.
func (m *MemoryStore) MatchesByUser(userID string) []models.Match {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Match(nil), m.matches[userID]...)
}

func (m *MemoryStore) ProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemoryStore) ProfilesByUserIDs(ctx context.Context, userIDs []string) (map[string]models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]models.Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := m.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
