package geo

import (
	"math"
	"testing"

	"github.com/example/tour-matching/internal/models"
)

func TestDegreeDistanceZero(t *testing.T) {
	if d := DegreeDistance(1.5, -2.5, 1.5, -2.5); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDegreeDistancePickupExample(t *testing.T) {
	// Driver at (0,0) vs pickup (0.1,0.1) ~ 0.1414; driver at (1,1) ~ 1.2728.
	near := DegreeDistance(0, 0, 0.1, 0.1)
	far := DegreeDistance(1, 1, 0.1, 0.1)
	if math.Abs(near-0.1414) > 0.001 {
		t.Fatalf("near distance = %f, want ~0.1414", near)
	}
	if math.Abs(far-1.2728) > 0.001 {
		t.Fatalf("far distance = %f, want ~1.2728", far)
	}
	if far <= near {
		t.Fatalf("expected far > near")
	}
}

func TestDriverDistanceMissingCoordinates(t *testing.T) {
	lat := 1.0
	cases := []models.Driver{
		{ID: "no-coords"},
		{ID: "lat-only", LocationLat: &lat},
		{ID: "lng-only", LocationLng: &lat},
	}
	for _, d := range cases {
		if got := DriverDistance(&d, 0, 0); !math.IsInf(got, 1) {
			t.Fatalf("%s: expected +Inf, got %f", d.ID, got)
		}
	}
}

func TestDriverDistanceWithCoordinates(t *testing.T) {
	lat, lng := 3.0, 4.0
	d := models.Driver{ID: "d1", LocationLat: &lat, LocationLng: &lng}
	if got := DriverDistance(&d, 0, 0); math.Abs(got-5.0) > 1e-9 {
		t.Fatalf("expected 5.0, got %f", got)
	}
}
