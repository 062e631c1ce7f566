package models

import "time"

// Trend is the direction of a KPI score relative to its previous period.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// HistoricalPoint is one dated entry of a KPI's score series.
type HistoricalPoint struct {
	Date         string  `json:"date"`
	Score        float64 `json:"score"`
	ArticleCount int     `json:"articleCount"`
}

// KPI is a tracked indicator with its derived scores. The trend field is
// computed by the pipeline; readers treat it as authoritative and never
// re-derive it from the two scores.
type KPI struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	Keywords      []string          `json:"keywords,omitempty"`
	CurrentScore  float64           `json:"currentScore"`
	PreviousScore float64           `json:"previousScore"`
	Trend         Trend             `json:"trend"`
	ArticleCount  int               `json:"articleCount"`
	LastUpdated   time.Time         `json:"lastUpdated"`
	Historical    []HistoricalPoint `json:"historicalData,omitempty"`
}

// trendBand is the score delta within which a KPI counts as stable.
const trendBand = 5.0

// Consistent reports whether the stored trend label agrees with the score
// delta. Diagnostics only; mismatches are a data-quality warning upstream,
// not an error here.
func (k *KPI) Consistent() bool {
	switch {
	case k.CurrentScore > k.PreviousScore+trendBand:
		return k.Trend == TrendUp
	case k.CurrentScore < k.PreviousScore-trendBand:
		return k.Trend == TrendDown
	default:
		return k.Trend == TrendStable
	}
}
