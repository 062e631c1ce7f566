package pipeline

import (
	"sort"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// GenerateTrends buckets articles by publication day and counts sentiment
// labels, oldest day first.
func GenerateTrends(articles []*models.Article) []models.TrendPoint {
	byDay := make(map[string]*models.TrendPoint)
	for _, a := range articles {
		day := a.PublishedAt.Format("2006-01-02")
		point := byDay[day]
		if point == nil {
			point = &models.TrendPoint{Date: day}
			byDay[day] = point
		}
		switch a.Sentiment {
		case models.SentimentPositive:
			point.Positive++
		case models.SentimentNegative:
			point.Negative++
		default:
			point.Neutral++
		}
	}

	out := make([]models.TrendPoint, 0, len(byDay))
	for _, point := range byDay {
		out = append(out, *point)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
