// Package ranking orders articles by their precomputed per-KPI relevance.
//
// Relevance scores are produced upstream by the batch pipeline; this
// package only consumes them.
package ranking

import (
	"sort"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// Defaults for the qualification threshold and result size.
const (
	DefaultThreshold = 30.0
	DefaultLimit     = 10
)

// Ranker selects and orders articles for a KPI.
type Ranker struct {
	threshold float64
	limit     int
}

// NewRanker creates a ranker with the given default threshold and limit.
// Non-positive values fall back to the package defaults.
func NewRanker(threshold float64, limit int) *Ranker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Ranker{threshold: threshold, limit: limit}
}

// ForKPI returns up to limit articles whose relevance for kpiID is
// strictly greater than threshold, ordered by relevance descending.
// Ties break by article id ascending so results are deterministic.
// Articles without a relevance entry score 0 and never qualify.
func ForKPI(articles []*models.Article, kpiID string, threshold float64, limit int) []*models.Article {
	qualified := make([]*models.Article, 0, len(articles))
	for _, a := range articles {
		if a.RelevanceFor(kpiID) > threshold {
			qualified = append(qualified, a)
		}
	}

	sort.Slice(qualified, func(i, j int) bool {
		ri := qualified[i].RelevanceFor(kpiID)
		rj := qualified[j].RelevanceFor(kpiID)
		if ri != rj {
			return ri > rj
		}
		return qualified[i].ID < qualified[j].ID
	})

	if limit > 0 && len(qualified) > limit {
		qualified = qualified[:limit]
	}
	return qualified
}

// ForKPI applies the ranker's configured defaults.
func (r *Ranker) ForKPI(articles []*models.Article, kpiID string) []*models.Article {
	return ForKPI(articles, kpiID, r.threshold, r.limit)
}

// ForKPIWith overrides the ranker defaults for one call; non-positive
// arguments keep the configured values.
func (r *Ranker) ForKPIWith(articles []*models.Article, kpiID string, threshold float64, limit int) []*models.Article {
	if threshold <= 0 {
		threshold = r.threshold
	}
	if limit <= 0 {
		limit = r.limit
	}
	return ForKPI(articles, kpiID, threshold, limit)
}

// Threshold returns the configured qualification threshold.
func (r *Ranker) Threshold() float64 { return r.threshold }

// Limit returns the configured result size.
func (r *Ranker) Limit() int { return r.limit }
