package pipeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// Alerting thresholds.
const (
	spikeSigma       = 2.0  // daily volume above mean + 2σ is a spike
	spikeWindow      = 3    // only the most recent days can raise spikes
	declineWarnAt    = 40.0 // declining KPI below this warns
	declineCritAt    = 30.0 // and below this is critical
	surgeWindow      = 7    // recent articles considered for negative surge
	surgeMinCoverage = 10   // KPIs with less coverage are too noisy to judge
	surgeFraction    = 0.7
)

// DetectAnomalies raises alerts for volume spikes, declining KPIs, and
// negative-coverage surges. All alerts start in status new.
func DetectAnomalies(articles []*models.Article, kpis []*models.KPI, now time.Time) []*models.Alert {
	var alerts []*models.Alert
	alerts = append(alerts, volumeSpikes(articles, now)...)
	alerts = append(alerts, decliningKPIs(kpis, now)...)
	alerts = append(alerts, negativeSurges(articles, kpis, now)...)
	return alerts
}

// volumeSpikes flags recent days whose article count sits more than two
// standard deviations above the daily mean.
func volumeSpikes(articles []*models.Article, now time.Time) []*models.Alert {
	counts := make(map[string]int)
	for _, a := range articles {
		counts[a.PublishedAt.Format("2006-01-02")]++
	}
	if len(counts) <= spikeWindow {
		return nil
	}

	days := make([]string, 0, len(counts))
	var sum float64
	for day, n := range counts {
		days = append(days, day)
		sum += float64(n)
	}
	sort.Strings(days)

	m := sum / float64(len(days))
	var variance float64
	for _, n := range counts {
		variance += (float64(n) - m) * (float64(n) - m)
	}
	sigma := math.Sqrt(variance / float64(len(days)))
	threshold := m + spikeSigma*sigma

	var alerts []*models.Alert
	for _, day := range days[len(days)-spikeWindow:] {
		n := counts[day]
		if float64(n) <= threshold {
			continue
		}
		alerts = append(alerts, &models.Alert{
			ID:    "alert-spike-" + day,
			Title: "Unusual coverage volume",
			Description: fmt.Sprintf("%d articles published on %s, against a daily average of %.1f",
				n, day, m),
			Severity:  models.SeverityWarning,
			Status:    models.AlertNew,
			CreatedAt: now,
			Source:    "volume-monitor",
		})
	}
	return alerts
}

func decliningKPIs(kpis []*models.KPI, now time.Time) []*models.Alert {
	var alerts []*models.Alert
	for _, k := range kpis {
		if k.Trend != models.TrendDown || k.CurrentScore >= declineWarnAt {
			continue
		}
		severity := models.SeverityWarning
		if k.CurrentScore < declineCritAt {
			severity = models.SeverityCritical
		}
		alerts = append(alerts, &models.Alert{
			ID:    "alert-decline-" + k.ID,
			Title: k.Name + " declining",
			Description: fmt.Sprintf("%s dropped from %.1f to %.1f",
				k.Name, k.PreviousScore, k.CurrentScore),
			Severity:  severity,
			Status:    models.AlertNew,
			KPIID:     k.ID,
			CreatedAt: now,
			Source:    "kpi-monitor",
		})
	}
	return alerts
}

// negativeSurges flags KPIs whose recent coverage has turned predominantly
// negative.
func negativeSurges(articles []*models.Article, kpis []*models.KPI, now time.Time) []*models.Alert {
	var alerts []*models.Alert
	for _, k := range kpis {
		var covering []*models.Article
		for _, a := range articles {
			if a.References(k.ID) {
				covering = append(covering, a)
			}
		}
		if len(covering) <= surgeMinCoverage {
			continue
		}
		sort.Slice(covering, func(i, j int) bool {
			return covering[i].PublishedAt.Before(covering[j].PublishedAt)
		})
		recent := covering[len(covering)-surgeWindow:]
		negative := 0
		for _, a := range recent {
			if a.Sentiment == models.SentimentNegative {
				negative++
			}
		}
		if float64(negative)/float64(len(recent)) <= surgeFraction {
			continue
		}
		alerts = append(alerts, &models.Alert{
			ID:    "alert-negative-" + k.ID,
			Title: "Negative coverage surge: " + k.Name,
			Description: fmt.Sprintf("%d of the last %d articles covering %s are negative",
				negative, len(recent), k.Name),
			Severity:  models.SeverityWarning,
			Status:    models.AlertNew,
			KPIID:     k.ID,
			CreatedAt: now,
			Source:    "sentiment-monitor",
		})
	}
	return alerts
}
