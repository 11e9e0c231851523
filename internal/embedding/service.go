package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/tour-matching/internal/models"
	"github.com/example/tour-matching/internal/observability"
	"github.com/example/tour-matching/internal/store"
)

// Embedder is the external vector generator. Its output contract — one
// fixed-length numeric vector per input text — is what the matcher depends on.
type Embedder interface {
	Embed(ctx context.Context, input string) ([]float64, error)
}

// Service builds a user's interests text from their profile, generates a
// vector for it, and stores the result.
type Service struct {
	Store  store.Store
	Client Embedder
	Cache  *Cache // optional
	Logger *slog.Logger
}

// Generate computes and persists the embedding for userID's profile.
func (s *Service) Generate(ctx context.Context, userID string) (*models.UserEmbedding, error) {
	profile, err := s.Store.ProfileByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("no profile for user %s", userID)
	}

	text := InterestsText(profile)
	var vec []float64
	if s.Cache != nil {
		if v, ok := s.Cache.Get(text); ok {
			vec = v
		}
	}
	if vec == nil {
		vec, err = s.Client.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("generate embedding: %w", err)
		}
		if s.Cache != nil {
			s.Cache.Set(text, vec)
		}
	}

	emb := &models.UserEmbedding{UserID: userID, InterestsText: text}
	if err := emb.EncodeVector(vec); err != nil {
		return nil, err
	}
	if err := s.Store.UpsertEmbedding(ctx, emb); err != nil {
		return nil, err
	}
	observability.EmbeddingsBuilt.Inc()
	if s.Logger != nil {
		s.Logger.Info("embedding stored", "user_id", userID, "dimensions", len(vec))
	}
	return emb, nil
}

// InterestsText flattens the descriptive profile fields into the text the
// vector is generated from. Empty sections are dropped.
func InterestsText(p *models.Profile) string {
	parts := []string{
		p.Bio,
		strings.Join(p.Hobbies, ", "),
		strings.Join(p.Languages, ", "),
		strings.Join(p.MusicTastes, ", "),
		p.LocationName,
	}
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ". ")
}
