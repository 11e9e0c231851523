package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Ride request lifecycle statuses. The booking flow creates requests as
// "pending"; dispatch moves them to "driver_assigned".
const (
	RideStatusPending        = "pending"
	RideStatusDriverAssigned = "driver_assigned"
)

// MatchStatusSuggested is the status every freshly computed match row carries.
const MatchStatusSuggested = "suggested"

type Driver struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	VehicleType   string    `db:"vehicle_type" json:"vehicle_type"`
	VehiclePlate  string    `db:"vehicle_plate" json:"vehicle_plate"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	LocationLat   *float64  `db:"location_lat" json:"location_lat"`
	LocationLng   *float64  `db:"location_lng" json:"location_lng"`
	Rating        float64   `db:"rating" json:"rating"`
	TotalTrips    int       `db:"total_trips" json:"total_trips"`
	IsAvailable   bool      `db:"is_available" json:"is_available"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// HasLocation reports whether both coordinates are present. Drivers without a
// location are effectively undispatchable.
func (d *Driver) HasLocation() bool {
	return d.LocationLat != nil && d.LocationLng != nil
}

type RideRequest struct {
	ID                  string    `db:"id" json:"id"`
	BookingID           string    `db:"booking_id" json:"booking_id"`
	DriverID            *string   `db:"driver_id" json:"driver_id"`
	PickupLat           float64   `db:"pickup_lat" json:"pickup_lat"`
	PickupLng           float64   `db:"pickup_lng" json:"pickup_lng"`
	PickupLocationName  string    `db:"pickup_location_name" json:"pickup_location_name"`
	DropoffLat          float64   `db:"dropoff_lat" json:"dropoff_lat"`
	DropoffLng          float64   `db:"dropoff_lng" json:"dropoff_lng"`
	DropoffLocationName string    `db:"dropoff_location_name" json:"dropoff_location_name"`
	Status              string    `db:"status" json:"status"`
	EstimatedFare       *float64  `db:"estimated_fare" json:"estimated_fare"`
	ActualFare          *float64  `db:"actual_fare" json:"actual_fare"`
	PaymentID           *string   `db:"payment_id" json:"payment_id"`
	PaymentStatus       *string   `db:"payment_status" json:"payment_status"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// UserEmbedding holds one interest vector per user. EmbeddingData is the
// JSON-serialized vector exactly as the embedding generator stored it.
type UserEmbedding struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	EmbeddingData string    `db:"embedding_data" json:"embedding_data"`
	InterestsText string    `db:"interests_text" json:"interests_text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Vector decodes the stored embedding payload.
func (e *UserEmbedding) Vector() ([]float64, error) {
	var v []float64
	if err := json.Unmarshal([]byte(e.EmbeddingData), &v); err != nil {
		return nil, fmt.Errorf("decode embedding for user %s: %w", e.UserID, err)
	}
	return v, nil
}

// EncodeVector serializes v into EmbeddingData.
func (e *UserEmbedding) EncodeVector(v []float64) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e.EmbeddingData = string(b)
	return nil
}

type Match struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	MatchedUserID   string    `db:"matched_user_id" json:"matched_user_id"`
	SimilarityScore float64   `db:"similarity_score" json:"similarity_score"`
	MatchReason     string    `db:"match_reason" json:"match_reason"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type Profile struct {
	ID           string         `db:"id" json:"id"`
	UserID       string         `db:"user_id" json:"user_id"`
	FullName     string         `db:"full_name" json:"full_name"`
	Bio          string         `db:"bio" json:"bio"`
	AvatarURL    string         `db:"avatar_url" json:"avatar_url"`
	Hobbies      pq.StringArray `db:"hobbies" json:"hobbies"`
	Languages    pq.StringArray `db:"languages" json:"languages"`
	MusicTastes  pq.StringArray `db:"music_tastes" json:"music_tastes"`
	LocationName string         `db:"location_name" json:"location_name"`
	LocationLat  *float64       `db:"location_lat" json:"location_lat"`
	LocationLng  *float64       `db:"location_lng" json:"location_lng"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// MatchResult is the enriched per-candidate payload returned to the caller.
// Profile stays nil when the matched user has no profile row; the match is
// still returned.
type MatchResult struct {
	UserID          string   `json:"user_id"`
	SimilarityScore float64  `json:"similarity_score"`
	MatchReason     string   `json:"match_reason"`
	Profile         *Profile `json:"profile,omitempty"`
}

// DriverLocationUpdate is the ingest message published to the location topic
// and consumed by the location consumer.
type DriverLocationUpdate struct {
	DriverID    string  `json:"driver_id"`
	LocationLat float64 `json:"location_lat"`
	LocationLng float64 `json:"location_lng"`
}
