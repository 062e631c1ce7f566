package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// Insight generation thresholds.
const (
	insightMinCoverage  = 10  // KPI articles needed before narrating momentum or risk
	momentumSentiment   = 0.3 // average sentiment above this reads as momentum
	riskSentiment       = -0.2
	clusterMinSize      = 15 // topic clusters below this are not worth surfacing
	predictiveRunLength = 3  // consecutive declining periods to project forward
)

// GenerateInsights derives narrative insights from the finished KPIs and
// articles: momentum and risk reads per KPI, dominant topic clusters, and
// a projection when a score has declined three periods running.
func GenerateInsights(articles []*models.Article, kpis []*models.KPI, now time.Time) []*models.AIInsight {
	var insights []*models.AIInsight
	for _, k := range kpis {
		if in := momentumOrRisk(articles, k, now); in != nil {
			insights = append(insights, in)
		}
		if in := projectedDecline(k, now); in != nil {
			insights = append(insights, in)
		}
	}
	insights = append(insights, clusterInsights(articles, now)...)
	return insights
}

func momentumOrRisk(articles []*models.Article, k *models.KPI, now time.Time) *models.AIInsight {
	var sum float64
	count := 0
	for _, a := range articles {
		if a.References(k.ID) {
			sum += a.SentimentScore
			count++
		}
	}
	if count <= insightMinCoverage {
		return nil
	}
	avg := sum / float64(count)
	confidence := math.Min(95, 70+math.Abs(k.CurrentScore-k.PreviousScore))

	switch {
	case k.Trend == models.TrendUp && avg > momentumSentiment:
		return &models.AIInsight{
			ID:    "insight-momentum-" + k.ID,
			Title: k.Name + " gaining momentum",
			Summary: fmt.Sprintf("%s improved to %.1f with positive coverage across %d articles",
				k.Name, k.CurrentScore, count),
			Type:          models.InsightTrend,
			Confidence:    round2(confidence),
			RelatedKPIIDs: []string{k.ID},
			CreatedAt:     now,
		}
	case k.Trend == models.TrendDown && avg < riskSentiment:
		return &models.AIInsight{
			ID:    "insight-risk-" + k.ID,
			Title: k.Name + " under pressure",
			Summary: fmt.Sprintf("%s fell to %.1f amid negative coverage across %d articles",
				k.Name, k.CurrentScore, count),
			Type:          models.InsightRisk,
			Confidence:    round2(confidence),
			RelatedKPIIDs: []string{k.ID},
			CreatedAt:     now,
		}
	}
	return nil
}

// projectedDecline flags a KPI whose daily score has fallen for the last
// three recorded periods.
func projectedDecline(k *models.KPI, now time.Time) *models.AIInsight {
	h := k.Historical
	if len(h) < predictiveRunLength {
		return nil
	}
	tail := h[len(h)-predictiveRunLength:]
	for i := 1; i < len(tail); i++ {
		if tail[i].Score >= tail[i-1].Score {
			return nil
		}
	}
	return &models.AIInsight{
		ID:    "insight-projection-" + k.ID,
		Title: k.Name + " likely to keep falling",
		Summary: fmt.Sprintf("%s has declined for %d consecutive periods (%.1f to %.1f); expect continued deterioration without intervention",
			k.Name, predictiveRunLength, tail[0].Score, tail[len(tail)-1].Score),
		Type:          models.InsightRisk,
		Confidence:    88,
		RelatedKPIIDs: []string{k.ID},
		CreatedAt:     now,
	}
}

// clusterInsights surfaces large topic clusters with their most common
// extracted terms.
func clusterInsights(articles []*models.Article, now time.Time) []*models.AIInsight {
	byCluster := make(map[int][]*models.Article)
	for _, a := range articles {
		if a.TopicCluster == nil {
			continue
		}
		byCluster[*a.TopicCluster] = append(byCluster[*a.TopicCluster], a)
	}

	clusterIDs := make([]int, 0, len(byCluster))
	for id := range byCluster {
		clusterIDs = append(clusterIDs, id)
	}
	sort.Ints(clusterIDs)

	var insights []*models.AIInsight
	for _, id := range clusterIDs {
		members := byCluster[id]
		if len(members) < clusterMinSize {
			continue
		}
		terms := topTerms(members, 3)
		kpiIDs := relatedKPIs(members)
		label := "related coverage"
		if len(terms) > 0 {
			label = strings.Join(terms, ", ")
		}
		insights = append(insights, &models.AIInsight{
			ID:    fmt.Sprintf("insight-cluster-%d", id),
			Title: fmt.Sprintf("Coverage cluster: %s", label),
			Summary: fmt.Sprintf("%d articles form a distinct cluster around %s; consider a focused briefing",
				len(members), label),
			Type:          models.InsightRecommendation,
			Confidence:    round2(math.Min(90, 60+float64(len(members)))),
			RelatedKPIIDs: kpiIDs,
			CreatedAt:     now,
		})
	}
	return insights
}

func topTerms(articles []*models.Article, n int) []string {
	counts := make(map[string]int)
	for _, a := range articles {
		for _, term := range a.ExtractedTerms {
			counts[term]++
		}
	}
	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

func relatedKPIs(articles []*models.Article) []string {
	set := make(map[string]struct{})
	for _, a := range articles {
		for _, id := range a.KPIIDs {
			set[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
