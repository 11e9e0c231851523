package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/tour-matching/internal/models"
)

// fakeWriter implements LocationWriter for tests
type fakeWriter struct {
	failures int // number of times to fail before succeeding
	calls    int
	lastLat  float64
	lastLng  float64
}

func (f *fakeWriter) UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("write fail")
	}
	f.lastLat, f.lastLng = lat, lng
	return nil
}

func TestApplyWithRetry_SucceedsAfterRetries(t *testing.T) {
	f := &fakeWriter{failures: 1}
	upd := models.DriverLocationUpdate{DriverID: "d1", LocationLat: -4.0, LocationLng: 39.6}
	start := time.Now()
	if err := applyWithRetry(context.Background(), f, upd, 3, 10*time.Millisecond); err != nil {
		t.Fatalf("expected success, got err=%v", err)
	}
	if f.calls < 2 {
		t.Fatalf("expected retries, got calls=%d", f.calls)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("expected at least one backoff")
	}
	if f.lastLat != -4.0 || f.lastLng != 39.6 {
		t.Fatalf("unexpected coordinates %f,%f", f.lastLat, f.lastLng)
	}
}

func TestApplyWithRetry_FailsWhenExhausted(t *testing.T) {
	f := &fakeWriter{failures: 5}
	upd := models.DriverLocationUpdate{DriverID: "d1"}
	if err := applyWithRetry(context.Background(), f, upd, 3, 5*time.Millisecond); err == nil {
		t.Fatalf("expected error after retries")
	}
	if f.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", f.calls)
	}
}
