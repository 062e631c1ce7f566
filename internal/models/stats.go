package models

// DashboardStats is derived from the current snapshot on every request;
// it is never persisted.
type DashboardStats struct {
	TotalArticles int     `json:"totalArticles"`
	ArticlesToday int     `json:"articlesToday"`
	AvgSentiment  float64 `json:"avgSentiment"`
	ActiveKPIs    int     `json:"activeKpis"`
}
