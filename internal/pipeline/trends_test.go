package pipeline

import (
	"testing"

	"github.com/pmo-intel/insight-hub/internal/models"
)

func sentimentArticle(dayStr string, s models.Sentiment) *models.Article {
	return &models.Article{PublishedAt: day(dayStr), Sentiment: s}
}

func TestGenerateTrends(t *testing.T) {
	articles := []*models.Article{
		sentimentArticle("2026-01-12", models.SentimentNegative),
		sentimentArticle("2026-01-10", models.SentimentPositive),
		sentimentArticle("2026-01-10", models.SentimentPositive),
		sentimentArticle("2026-01-10", models.SentimentNeutral),
		sentimentArticle("2026-01-12", models.SentimentNegative),
	}

	trends := GenerateTrends(articles)
	if len(trends) != 2 {
		t.Fatalf("got %d points, want 2", len(trends))
	}
	want := []models.TrendPoint{
		{Date: "2026-01-10", Positive: 2, Negative: 0, Neutral: 1},
		{Date: "2026-01-12", Positive: 0, Negative: 2, Neutral: 0},
	}
	for i, w := range want {
		if trends[i] != w {
			t.Errorf("point %d = %+v, want %+v", i, trends[i], w)
		}
	}
}

func TestGenerateTrendsEmpty(t *testing.T) {
	if got := GenerateTrends(nil); len(got) != 0 {
		t.Errorf("got %d points for no articles", len(got))
	}
}
