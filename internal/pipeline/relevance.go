package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/embedding"
	"github.com/pmo-intel/insight-hub/internal/models"
	"github.com/pmo-intel/insight-hub/pkg/utils"
)

// Weights for the combined relevance score.
const (
	semanticWeight = 0.6
	keywordWeight  = 0.4
)

// RelevanceScorer scores article text against the KPI catalog. Scores are
// on [0, 100]; the combined score blends embedding similarity with keyword
// hits. Without an embedder the keyword score stands alone.
type RelevanceScorer struct {
	embedder embedding.Embedder
	kpiVecs  map[string][]float32
	logger   *zap.Logger
}

// NewRelevanceScorer builds a scorer, pre-embedding each KPI's descriptive
// text once. A nil embedder yields a keyword-only scorer.
func NewRelevanceScorer(ctx context.Context, embedder embedding.Embedder, logger *zap.Logger) (*RelevanceScorer, error) {
	s := &RelevanceScorer{
		embedder: embedder,
		kpiVecs:  make(map[string][]float32),
		logger:   logger,
	}
	if embedder == nil {
		logger.Info("relevance scorer running keyword-only, no embedder configured")
		return s, nil
	}
	for _, def := range AllKPIs() {
		text := def.Name + ". " + def.Description + ". " + strings.Join(def.Keywords, ", ")
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed KPI %s: %w", def.ID, err)
		}
		s.kpiVecs[def.ID] = vec
	}
	return s, nil
}

// Score returns per-KPI relevance for the article text, restricted to the
// catalog slice for its category.
func (s *RelevanceScorer) Score(ctx context.Context, text string, category models.Category) (map[string]float64, error) {
	defs := DefinitionsFor(category)
	out := make(map[string]float64, len(defs))

	var articleVec []float32
	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, utils.Truncate(text, 2000))
		if err != nil {
			return nil, fmt.Errorf("failed to embed article: %w", err)
		}
		articleVec = vec
	}

	lower := strings.ToLower(text)
	for _, def := range defs {
		kw := keywordScore(lower, def.Keywords)
		if articleVec == nil {
			out[def.ID] = round2(kw)
			continue
		}
		sem := math.Max(0, utils.CosineSimilarity(articleVec, s.kpiVecs[def.ID])) * 100
		out[def.ID] = round2(semanticWeight*sem + keywordWeight*kw)
	}
	return out, nil
}

// keywordScore is the fraction of a KPI's keywords present in the text,
// scaled to [0, 100].
func keywordScore(lowerText string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lowerText, strings.ToLower(kw)) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords)) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
