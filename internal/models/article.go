// Package models defines the core data structures shared by the loader,
// pipeline, and dashboard API: articles, KPIs, alerts, insights, and trends.
package models

import "time"

// Category classifies an article by the desk that produced it.
// The article-level set is closed; KPI categories are open strings.
type Category string

const (
	CategoryPower Category = "power"
	CategoryTax   Category = "tax"
)

// Sentiment is the label attached to an article by the upstream scorer.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Article is one processed news article. Records are produced by the batch
// pipeline and are immutable at runtime; bookmark membership is tracked
// separately in the session package.
type Article struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Source         string             `json:"source"`
	Category       Category           `json:"category"`
	PublishedAt    time.Time          `json:"publishedAt"`
	Summary        string             `json:"summary"`
	FullText       string             `json:"fullText,omitempty"`
	URL            string             `json:"url"`
	Author         string             `json:"author,omitempty"`
	Sentiment      Sentiment          `json:"sentiment"`
	SentimentScore float64            `json:"sentimentScore"`
	KPIIDs         []string           `json:"kpiIds"`
	KPIRelevance   map[string]float64 `json:"kpiRelevance"`
	ExtractedTerms []string           `json:"extractedTerms,omitempty"`
	Credibility    float64            `json:"credibilityScore,omitempty"`
	TopicCluster   *int               `json:"topicCluster,omitempty"`
}

// RelevanceFor returns the article's relevance score for a KPI.
// Articles without an entry for the KPI score 0.
func (a *Article) RelevanceFor(kpiID string) float64 {
	if a.KPIRelevance == nil {
		return 0
	}
	return a.KPIRelevance[kpiID]
}

// References reports whether the article lists kpiID among its qualified KPIs.
func (a *Article) References(kpiID string) bool {
	for _, id := range a.KPIIDs {
		if id == kpiID {
			return true
		}
	}
	return false
}

// TrendPoint is one day of sentiment counts for the trend chart.
type TrendPoint struct {
	Date     string `json:"date"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Neutral  int    `json:"neutral"`
}
