package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/tour-matching/internal/models"
	"github.com/example/tour-matching/internal/observability"
	"github.com/example/tour-matching/internal/store"
)

// Default ranking parameters, overridable via Service fields.
const (
	DefaultThreshold = 0.7
	DefaultTopN      = 10
)

// Locker serializes match computations per user. A nil Locker (or a failed
// acquire) is tolerated; the lock only narrows the window where a concurrent
// run can observe the delete-then-insert replacement mid-flight.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool)
}

// Publisher receives a best-effort event after each successful computation.
type Publisher interface {
	PublishMatchesComputed(ctx context.Context, userID string, count int) error
}

// Service computes interest matches for a user: score every other user's
// embedding by cosine similarity, keep the ones above the threshold, persist
// the replacement set, and enrich with profiles.
type Service struct {
	Store     store.Store
	Lock      Locker    // optional
	Events    Publisher // optional
	Logger    *slog.Logger
	Threshold float64
	TopN      int
}

type scoredCandidate struct {
	userID string
	score  float64
}

// FindMatches runs one full match computation for userID.
//
// The stored match set is replaced whenever scoring succeeds, even when the
// new set is empty. Ties on score keep the store's return order; that order
// is not a guarantee of the API.
func (s *Service) FindMatches(ctx context.Context, userID string) ([]models.MatchResult, error) {
	start := time.Now()
	// Threshold is taken as configured. Zero is a meaningful setting (accept
	// any positive similarity), so only TopN gets defaulted here.
	threshold := s.Threshold
	topN := s.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	own, err := s.Store.EmbeddingByUser(ctx, userID)
	if err != nil {
		observability.MatchRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	ownVec, err := own.Vector()
	if err != nil {
		observability.MatchRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	others, err := s.Store.OtherEmbeddings(ctx, userID)
	if err != nil {
		observability.MatchRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(others) == 0 {
		observability.MatchRunsTotal.WithLabelValues("empty").Inc()
		return []models.MatchResult{}, nil
	}

	scored := make([]scoredCandidate, 0, len(others))
	for i := range others {
		vec, err := others[i].Vector()
		if err != nil {
			s.logger().Warn("skipping undecodable embedding", "user_id", others[i].UserID, "error", err)
			continue
		}
		if len(vec) != len(ownVec) {
			// Should not happen when all vectors come from the same generator.
			s.logger().Warn("skipping embedding with mismatched dimensionality",
				"user_id", others[i].UserID, "got", len(vec), "want", len(ownVec))
			continue
		}
		if sim := Cosine(ownVec, vec); sim > threshold {
			scored = append(scored, scoredCandidate{userID: others[i].UserID, score: sim})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > topN {
		scored = scored[:topN]
	}

	if s.Lock != nil {
		if release, ok := s.Lock.Acquire(ctx, userID); ok {
			defer release()
		} else {
			s.logger().Warn("match lock unavailable, proceeding unserialized", "user_id", userID)
		}
	}

	rows := make([]models.Match, 0, len(scored))
	results := make([]models.MatchResult, 0, len(scored))
	for _, c := range scored {
		reason := fmt.Sprintf("%.1f%% compatibility based on shared interests", c.score*100)
		rows = append(rows, models.Match{
			ID:              uuid.NewString(),
			UserID:          userID,
			MatchedUserID:   c.userID,
			SimilarityScore: c.score,
			MatchReason:     reason,
			Status:          models.MatchStatusSuggested,
		})
		results = append(results, models.MatchResult{
			UserID:          c.userID,
			SimilarityScore: c.score,
			MatchReason:     reason,
		})
	}

	if err := s.Store.ReplaceMatches(ctx, userID, rows); err != nil {
		observability.MatchRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].UserID
	}
	profiles, err := s.Store.ProfilesByUserIDs(ctx, ids)
	if err != nil {
		observability.MatchRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	for i := range results {
		if p, ok := profiles[results[i].UserID]; ok {
			prof := p
			results[i].Profile = &prof
		}
	}

	if s.Events != nil {
		if err := s.Events.PublishMatchesComputed(ctx, userID, len(results)); err != nil {
			s.logger().Warn("publish matches_computed failed", "user_id", userID, "error", err)
		}
	}

	observability.MatchRunsTotal.WithLabelValues("ok").Inc()
	observability.MatchLatency.Observe(time.Since(start).Seconds())
	observability.MatchesReturned.Observe(float64(len(results)))
	return results, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
