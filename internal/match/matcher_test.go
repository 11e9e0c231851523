package match

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tour-matching/internal/models"
	"github.com/example/tour-matching/internal/store"
)

func newService(st store.Store) *Service {
	return &Service{Store: st, Threshold: DefaultThreshold, TopN: DefaultTopN}
}

func seedEmbedding(t *testing.T, st *store.MemoryStore, userID string, vec []float64) {
	t.Helper()
	b, err := json.Marshal(vec)
	require.NoError(t, err)
	require.NoError(t, st.UpsertEmbedding(context.Background(), &models.UserEmbedding{
		UserID:        userID,
		EmbeddingData: string(b),
	}))
}

func TestFindMatchesThresholdAndReason(t *testing.T) {
	st := store.NewMemoryStore()
	seedEmbedding(t, st, "me", []float64{1, 0})
	seedEmbedding(t, st, "twin", []float64{1, 0})       // sim 1.0
	seedEmbedding(t, st, "stranger", []float64{0, 1})   // sim 0.0
	seedEmbedding(t, st, "opposite", []float64{-1, 0})  // sim -1.0
	seedEmbedding(t, st, "borderline", []float64{1, 1}) // sim ~0.707, strictly > 0.7

	s := newService(st)
	got, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "twin", got[0].UserID)
	assert.InDelta(t, 1.0, got[0].SimilarityScore, 1e-12)
	assert.Equal(t, "100.0% compatibility based on shared interests", got[0].MatchReason)

	assert.Equal(t, "borderline", got[1].UserID)
	assert.Equal(t, "70.7% compatibility based on shared interests", got[1].MatchReason)

	for _, m := range got {
		assert.Greater(t, m.SimilarityScore, 0.7)
	}
}

func TestFindMatchesZeroThresholdIncludesWeakMatches(t *testing.T) {
	st := store.NewMemoryStore()
	seedEmbedding(t, st, "me", []float64{1, 0})
	seedEmbedding(t, st, "weak", []float64{1, 1.5})     // sim ~0.55, below the default
	seedEmbedding(t, st, "stranger", []float64{0, 1})   // sim 0.0
	seedEmbedding(t, st, "opposite", []float64{-1, 0})  // sim -1.0

	s := &Service{Store: st, Threshold: 0, TopN: DefaultTopN}
	got, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)

	// An explicit zero threshold keeps every positive similarity; it is not
	// replaced by the default. Zero and negative scores still fail sim > 0.
	require.Len(t, got, 1)
	assert.Equal(t, "weak", got[0].UserID)
}

func TestFindMatchesSortedDescendingAndCapped(t *testing.T) {
	st := store.NewMemoryStore()
	base := []float64{1, 0, 0}
	seedEmbedding(t, st, "me", base)
	// 15 candidates all above the threshold at varying similarity.
	for i := 0; i < 15; i++ {
		v := []float64{1, float64(i) * 0.02, 0}
		seedEmbedding(t, st, userIDFor(i), v)
	}

	s := newService(st)
	got, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)
	assert.Len(t, got, DefaultTopN)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].SimilarityScore, got[i].SimilarityScore)
	}
}

func userIDFor(i int) string { return string(rune('a'+i)) + "-user" }

func TestFindMatchesEqualScoresKeepStoreOrder(t *testing.T) {
	st := store.NewMemoryStore()
	seedEmbedding(t, st, "me", []float64{1, 0})
	// All candidates score identically; the stable sort must preserve the
	// order the store returned them in.
	for _, id := range []string{"gamma", "alpha", "beta"} {
		seedEmbedding(t, st, id, []float64{2, 0})
	}

	s := newService(st)
	got, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "gamma", got[0].UserID)
	assert.Equal(t, "alpha", got[1].UserID)
	assert.Equal(t, "beta", got[2].UserID)
}

func TestFindMatchesPersistsReplacementSet(t *testing.T) {
	st := store.NewMemoryStore()
	seedEmbedding(t, st, "me", []float64{1, 0})
	seedEmbedding(t, st, "twin", []float64{1, 0})

	s := newService(st)
	_, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)

	rows := st.MatchesByUser("me")
	require.Len(t, rows, 1)
	assert.Equal(t, "me", rows[0].UserID)
	assert.Equal(t, "twin", rows[0].MatchedUserID)
	assert.Equal(t, models.MatchStatusSuggested, rows[0].Status)
	assert.NotEmpty(t, rows[0].ID)

	// Recompute with an embedding that no longer matches: the old row must go.
	seedEmbedding(t, st, "twin", []float64{0, 1})
	_, err = s.FindMatches(context.Background(), "me")
	require.NoError(t, err)
	assert.Empty(t, st.MatchesByUser("me"))
}

func TestFindMatchesIdempotentReason(t *testing.T) {
	st := store.NewMemoryStore()
	seedEmbedding(t, st, "me", []float64{0.6, 0.8, 0.1})
	seedEmbedding(t, st, "other", []float64{0.58, 0.81, 0.12})

	s := newService(st)
	first, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)
	second, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].MatchReason, second[i].MatchReason)
	}
}

func TestFindMatchesProfileEnrichment(t *testing.T) {
	st := store.NewMemoryStore()
	seedEmbedding(t, st, "me", []float64{1, 0})
	seedEmbedding(t, st, "with-profile", []float64{1, 0.01})
	seedEmbedding(t, st, "without-profile", []float64{1, 0.02})
	st.AddProfile(models.Profile{UserID: "with-profile", FullName: "Amina K", Bio: "hiker"})

	s := newService(st)
	got, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byUser := map[string]models.MatchResult{}
	for _, m := range got {
		byUser[m.UserID] = m
	}
	require.NotNil(t, byUser["with-profile"].Profile)
	assert.Equal(t, "Amina K", byUser["with-profile"].Profile.FullName)
	assert.Nil(t, byUser["without-profile"].Profile)
}

func TestFindMatchesSkipsMismatchedDimensions(t *testing.T) {
	st := store.NewMemoryStore()
	seedEmbedding(t, st, "me", []float64{1, 0})
	seedEmbedding(t, st, "short", []float64{1})
	seedEmbedding(t, st, "ok", []float64{1, 0})

	s := newService(st)
	got, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].UserID)
}

func TestFindMatchesZeroVectorCandidateExcluded(t *testing.T) {
	st := store.NewMemoryStore()
	seedEmbedding(t, st, "me", []float64{1, 0})
	seedEmbedding(t, st, "zero", []float64{0, 0})

	s := newService(st)
	got, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindMatchesNoOtherEmbeddings(t *testing.T) {
	st := store.NewMemoryStore()
	seedEmbedding(t, st, "me", []float64{1, 0})

	s := newService(st)
	got, err := s.FindMatches(context.Background(), "me")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// replaceTracker records ReplaceMatches calls so tests can assert no writes
// happened on early failures.
type replaceTracker struct {
	*store.MemoryStore
	calls int
}

func (r *replaceTracker) ReplaceMatches(ctx context.Context, userID string, matches []models.Match) error {
	r.calls++
	return r.MemoryStore.ReplaceMatches(ctx, userID, matches)
}

func TestFindMatchesMissingEmbeddingNoWrites(t *testing.T) {
	tracker := &replaceTracker{MemoryStore: store.NewMemoryStore()}
	s := newService(tracker)

	_, err := s.FindMatches(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrEmbeddingNotFound)
	assert.Zero(t, tracker.calls)
}
