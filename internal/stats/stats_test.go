package stats

import (
	"math"
	"testing"
	"time"

	"github.com/pmo-intel/insight-hub/internal/models"
)

func articleAt(ts time.Time, score float64) *models.Article {
	return &models.Article{PublishedAt: ts, SentimentScore: score}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, nil)
	if s.TotalArticles != 0 || s.ActiveKPIs != 0 || s.ArticlesToday != 0 {
		t.Errorf("stats = %+v, want zeros", s)
	}
	if s.AvgSentiment != 0 {
		t.Errorf("AvgSentiment = %v, want exactly 0 for empty input", s.AvgSentiment)
	}
}

func TestComputeAvgSentiment(t *testing.T) {
	now := time.Date(2026, 1, 21, 15, 0, 0, 0, time.Local)
	articles := []*models.Article{
		articleAt(now, 0.8),
		articleAt(now, -0.4),
		articleAt(now, 0.0),
	}
	s := computeAt(articles, nil, now)
	if s.TotalArticles != 3 {
		t.Errorf("TotalArticles = %d, want 3", s.TotalArticles)
	}
	if math.Abs(s.AvgSentiment-0.133) > 0.001 {
		t.Errorf("AvgSentiment = %v, want ~0.133", s.AvgSentiment)
	}
	if s.AvgSentiment < -1 || s.AvgSentiment > 1 {
		t.Errorf("AvgSentiment = %v outside [-1,1]", s.AvgSentiment)
	}
}

func TestComputeArticlesToday(t *testing.T) {
	now := time.Date(2026, 1, 21, 15, 0, 0, 0, time.Local)
	articles := []*models.Article{
		articleAt(time.Date(2026, 1, 21, 0, 0, 0, 0, time.Local), 0),  // midnight today
		articleAt(time.Date(2026, 1, 21, 23, 59, 0, 0, time.Local), 0), // late today
		articleAt(time.Date(2026, 1, 20, 23, 59, 0, 0, time.Local), 0), // yesterday
		articleAt(time.Date(2026, 1, 22, 0, 1, 0, 0, time.Local), 0),   // tomorrow
	}
	s := computeAt(articles, nil, now)
	if s.ArticlesToday != 2 {
		t.Errorf("ArticlesToday = %d, want 2", s.ArticlesToday)
	}
}

func TestComputeActiveKPIs(t *testing.T) {
	kpis := []*models.KPI{{ID: "fbr-tax"}, {ID: "circular-debt"}}
	s := Compute(nil, kpis)
	if s.ActiveKPIs != 2 {
		t.Errorf("ActiveKPIs = %d, want 2", s.ActiveKPIs)
	}
}
