package models

import "errors"

// Sentinel errors surfaced by the dispatch and matching services. Handlers map
// these onto HTTP statuses; anything else is treated as an operation failure.
var (
	ErrNoDriversAvailable = errors.New("no available drivers found")
	ErrNoLocatedDrivers   = errors.New("no drivers with valid locations found")
	ErrEmbeddingNotFound  = errors.New("user embedding not found")
	ErrRideNotFound       = errors.New("ride request not found")
	ErrUnauthenticated    = errors.New("user not authenticated")
)
