package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/tour-matching/internal/models"
)

// Event names published to the events topic.
const (
	TypeDriverAssigned  = "driver_assigned"
	TypeMatchesComputed = "matches_computed"
)

// Envelope wraps every event on the wire.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type DriverAssignedPayload struct {
	RideRequestID string `json:"ride_request_id"`
	DriverID      string `json:"driver_id"`
}

type MatchesComputedPayload struct {
	UserID     string `json:"user_id"`
	MatchCount int    `json:"match_count"`
}

// Producer publishes domain events and driver location updates to Kafka.
type Producer struct {
	events    *kafka.Writer
	locations *kafka.Writer
}

func NewProducer(brokers []string, eventsTopic, locationsTopic string) *Producer {
	return &Producer{
		events:    kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: eventsTopic, Balancer: &kafka.LeastBytes{}}),
		locations: kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: locationsTopic, Balancer: &kafka.LeastBytes{}}),
	}
}

func (p *Producer) PublishDriverAssigned(ctx context.Context, rideRequestID, driverID string) error {
	return p.publish(ctx, rideRequestID, Envelope{
		Type:       TypeDriverAssigned,
		OccurredAt: time.Now().UTC(),
		Payload:    DriverAssignedPayload{RideRequestID: rideRequestID, DriverID: driverID},
	})
}

func (p *Producer) PublishMatchesComputed(ctx context.Context, userID string, count int) error {
	return p.publish(ctx, userID, Envelope{
		Type:       TypeMatchesComputed,
		OccurredAt: time.Now().UTC(),
		Payload:    MatchesComputedPayload{UserID: userID, MatchCount: count},
	})
}

// PublishDriverLocation feeds the location topic consumed by cmd/consumer.
func (p *Producer) PublishDriverLocation(ctx context.Context, upd models.DriverLocationUpdate) error {
	b, err := json.Marshal(upd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.locations.WriteMessages(ctx, kafka.Message{Key: []byte(upd.DriverID), Value: b})
}

func (p *Producer) publish(ctx context.Context, key string, env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.events.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}

func (p *Producer) Close() error {
	var first error
	for _, w := range []*kafka.Writer{p.events, p.locations} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
