// Package stats derives dashboard summary metrics from the current snapshot.
package stats

import (
	"time"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// Compute re-derives dashboard stats from the two source collections.
// It holds no state and tolerates empty inputs.
func Compute(articles []*models.Article, kpis []*models.KPI) models.DashboardStats {
	return computeAt(articles, kpis, time.Now())
}

// computeAt is the clock seam for tests. "Today" means the same local
// calendar day as now.
func computeAt(articles []*models.Article, kpis []*models.KPI, now time.Time) models.DashboardStats {
	s := models.DashboardStats{
		TotalArticles: len(articles),
		ActiveKPIs:    len(kpis),
	}

	year, month, day := now.Date()
	var sum float64
	for _, a := range articles {
		sum += a.SentimentScore
		ay, am, ad := a.PublishedAt.Local().Date()
		if ay == year && am == month && ad == day {
			s.ArticlesToday++
		}
	}
	if len(articles) > 0 {
		s.AvgSentiment = sum / float64(len(articles))
	}
	return s
}
