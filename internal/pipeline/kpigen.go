package pipeline

import (
	"sort"
	"time"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// trendBand is the score delta beyond which a KPI moves off stable.
const trendBand = 5.0

// GenerateKPIs derives the KPI records from processed articles. Catalog
// entries with no qualifying coverage are omitted, so the emitted set is
// the active KPIs. The score for one article is ((sentiment+1)/2) *
// relevance, so a neutral article at full relevance lands at 50. The
// previous-period score is the mean of the older half of the coverage,
// giving the trend arrow a same-batch baseline.
func GenerateKPIs(articles []*models.Article, now time.Time) []*models.KPI {
	kpis := make([]*models.KPI, 0, len(PowerKPIs)+len(TaxKPIs))
	for _, def := range AllKPIs() {
		if kpi := generateKPI(def, articles); kpi != nil {
			kpis = append(kpis, kpi)
		}
	}
	return kpis
}

func generateKPI(def Definition, articles []*models.Article) *models.KPI {
	kpi := &models.KPI{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Category:    def.Category,
		Keywords:    def.Keywords,
	}

	var relevant []*models.Article
	for _, a := range articles {
		if a.RelevanceFor(def.ID) > qualifyThreshold {
			relevant = append(relevant, a)
		}
	}
	kpi.ArticleCount = len(relevant)

	if len(relevant) == 0 {
		return nil
	}

	sort.Slice(relevant, func(i, j int) bool {
		return relevant[i].PublishedAt.Before(relevant[j].PublishedAt)
	})

	scores := make([]float64, len(relevant))
	for i, a := range relevant {
		scores[i] = articleScore(a, def.ID)
	}

	kpi.CurrentScore = round2(mean(scores))
	kpi.PreviousScore = kpi.CurrentScore
	if len(scores) > 5 {
		kpi.PreviousScore = round2(mean(scores[:len(scores)/2]))
	}
	kpi.Trend = trendOf(kpi.CurrentScore, kpi.PreviousScore)
	kpi.LastUpdated = relevant[len(relevant)-1].PublishedAt
	kpi.Historical = historicalSeries(relevant, scores)
	return kpi
}

// articleScore maps an article's sentiment and KPI relevance onto [0, 100].
func articleScore(a *models.Article, kpiID string) float64 {
	return (a.SentimentScore + 1) / 2 * a.RelevanceFor(kpiID)
}

func trendOf(current, previous float64) models.Trend {
	switch {
	case current > previous+trendBand:
		return models.TrendUp
	case current < previous-trendBand:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

// historicalSeries buckets scores by publication day, oldest first.
func historicalSeries(relevant []*models.Article, scores []float64) []models.HistoricalPoint {
	type bucket struct {
		sum   float64
		count int
	}
	byDay := make(map[string]*bucket)
	for i, a := range relevant {
		day := a.PublishedAt.Format("2006-01-02")
		b := byDay[day]
		if b == nil {
			b = &bucket{}
			byDay[day] = b
		}
		b.sum += scores[i]
		b.count++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]models.HistoricalPoint, 0, len(days))
	for _, day := range days {
		b := byDay[day]
		out = append(out, models.HistoricalPoint{
			Date:         day,
			Score:        round2(b.sum / float64(b.count)),
			ArticleCount: b.count,
		})
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
