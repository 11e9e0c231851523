package store

import (
	"context"
	"testing"

	"github.com/example/tour-matching/internal/models"
)

func TestClaimDriverIsSingleShot(t *testing.T) {
	st := NewMemoryStore()
	st.AddDriver(models.Driver{ID: "d1", IsAvailable: true})
	ctx := context.Background()

	ok, err := st.ClaimDriver(ctx, "d1")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = st.ClaimDriver(ctx, "d1")
	if err != nil {
		t.Fatalf("second claim err: %v", err)
	}
	if ok {
		t.Fatal("second claim should fail")
	}
}

func TestAvailableDriversKeepsInsertionOrder(t *testing.T) {
	st := NewMemoryStore()
	for _, id := range []string{"c", "a", "b"} {
		st.AddDriver(models.Driver{ID: id, IsAvailable: true})
	}
	st.AddDriver(models.Driver{ID: "z", IsAvailable: false})

	drivers, err := st.AvailableDrivers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "a", "b"}
	if len(drivers) != len(want) {
		t.Fatalf("got %d drivers, want %d", len(drivers), len(want))
	}
	for i := range want {
		if drivers[i].ID != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, drivers[i].ID, want[i])
		}
	}
}

func TestOtherEmbeddingsKeepInsertionOrder(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "me", "b"} {
		if err := st.UpsertEmbedding(ctx, &models.UserEmbedding{UserID: id, EmbeddingData: "[1]"}); err != nil {
			t.Fatal(err)
		}
	}
	// Re-upserting an existing user must not move it to the back.
	if err := st.UpsertEmbedding(ctx, &models.UserEmbedding{UserID: "c", EmbeddingData: "[2]"}); err != nil {
		t.Fatal(err)
	}

	embs, err := st.OtherEmbeddings(ctx, "me")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "a", "b"}
	if len(embs) != len(want) {
		t.Fatalf("got %d embeddings, want %d", len(embs), len(want))
	}
	for i := range want {
		if embs[i].UserID != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, embs[i].UserID, want[i])
		}
	}
}

func TestReplaceMatchesWithEmptySetClears(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.ReplaceMatches(ctx, "u1", []models.Match{{ID: "m1", UserID: "u1", MatchedUserID: "u2"}}); err != nil {
		t.Fatal(err)
	}
	if got := st.MatchesByUser("u1"); len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if err := st.ReplaceMatches(ctx, "u1", nil); err != nil {
		t.Fatal(err)
	}
	if got := st.MatchesByUser("u1"); len(got) != 0 {
		t.Fatalf("expected cleared matches, got %d", len(got))
	}
}

func TestAssignRideMissing(t *testing.T) {
	st := NewMemoryStore()
	if _, err := st.AssignRide(context.Background(), "nope", "d1"); err != models.ErrRideNotFound {
		t.Fatalf("expected ErrRideNotFound, got %v", err)
	}
}

func TestProfilesByUserIDsSkipsMissing(t *testing.T) {
	st := NewMemoryStore()
	st.AddProfile(models.Profile{UserID: "u1", FullName: "One"})

	got, err := st.ProfilesByUserIDs(context.Background(), []string{"u1", "u2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(got))
	}
	if _, ok := got["u2"]; ok {
		t.Fatal("u2 should be absent")
	}
}
