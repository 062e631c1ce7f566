package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/pmo-intel/insight-hub/internal/models"
)

func TestVolumeSpikeAlert(t *testing.T) {
	// Nine quiet days of two articles, then thirty on the last day.
	var articles []*models.Article
	for d := 1; d <= 9; d++ {
		for i := 0; i < 2; i++ {
			articles = append(articles, sentimentArticle(fmt.Sprintf("2026-01-%02d", d), models.SentimentNeutral))
		}
	}
	for i := 0; i < 30; i++ {
		articles = append(articles, sentimentArticle("2026-01-10", models.SentimentNeutral))
	}

	alerts := DetectAnomalies(articles, nil, time.Now())
	var spike *models.Alert
	for _, a := range alerts {
		if a.ID == "alert-spike-2026-01-10" {
			spike = a
		}
	}
	if spike == nil {
		t.Fatal("expected a volume spike alert for 2026-01-10")
	}
	if spike.Severity != models.SeverityWarning || spike.Status != models.AlertNew {
		t.Errorf("spike = %s/%s, want warning/new", spike.Severity, spike.Status)
	}
}

func TestNoSpikeOnQuietDays(t *testing.T) {
	var articles []*models.Article
	for d := 1; d <= 10; d++ {
		articles = append(articles, sentimentArticle(fmt.Sprintf("2026-01-%02d", d), models.SentimentNeutral))
	}
	for _, a := range DetectAnomalies(articles, nil, time.Now()) {
		if a.Source == "volume-monitor" {
			t.Errorf("unexpected spike alert %s", a.ID)
		}
	}
}

func TestDecliningKPIAlerts(t *testing.T) {
	kpis := []*models.KPI{
		{ID: "fbr-tax", Name: "FBR Tax Collection", Trend: models.TrendDown, CurrentScore: 35, PreviousScore: 55},
		{ID: "td-losses", Name: "T&D Losses", Trend: models.TrendDown, CurrentScore: 22, PreviousScore: 45},
		{ID: "tax-to-gdp", Name: "Tax-to-GDP Ratio", Trend: models.TrendDown, CurrentScore: 60, PreviousScore: 70},
		{ID: "circular-debt", Name: "Circular Debt", Trend: models.TrendStable, CurrentScore: 20, PreviousScore: 20},
	}

	alerts := DetectAnomalies(nil, kpis, time.Now())
	bySeverity := make(map[string]models.Severity)
	for _, a := range alerts {
		bySeverity[a.ID] = a.Severity
	}

	if got := bySeverity["alert-decline-fbr-tax"]; got != models.SeverityWarning {
		t.Errorf("fbr-tax severity = %s, want warning", got)
	}
	if got := bySeverity["alert-decline-td-losses"]; got != models.SeverityCritical {
		t.Errorf("td-losses severity = %s, want critical", got)
	}
	if _, ok := bySeverity["alert-decline-tax-to-gdp"]; ok {
		t.Error("healthy score must not alert even when trending down")
	}
	if _, ok := bySeverity["alert-decline-circular-debt"]; ok {
		t.Error("stable KPI must not raise a decline alert")
	}
}

func TestNegativeSurgeAlert(t *testing.T) {
	kpi := &models.KPI{ID: "circular-debt", Name: "Circular Debt", Trend: models.TrendStable}

	var articles []*models.Article
	// Five older positive articles, then seven recent ones, six negative.
	for d := 1; d <= 5; d++ {
		a := sentimentArticle(fmt.Sprintf("2026-01-%02d", d), models.SentimentPositive)
		a.KPIIDs = []string{"circular-debt"}
		articles = append(articles, a)
	}
	for d := 6; d <= 12; d++ {
		s := models.SentimentNegative
		if d == 6 {
			s = models.SentimentPositive
		}
		a := sentimentArticle(fmt.Sprintf("2026-01-%02d", d), s)
		a.KPIIDs = []string{"circular-debt"}
		articles = append(articles, a)
	}

	alerts := DetectAnomalies(articles, []*models.KPI{kpi}, time.Now())
	found := false
	for _, a := range alerts {
		if a.ID == "alert-negative-circular-debt" {
			found = true
			if a.KPIID != "circular-debt" || a.Severity != models.SeverityWarning {
				t.Errorf("surge alert = %+v", a)
			}
		}
	}
	if !found {
		t.Fatal("expected a negative surge alert")
	}
}

func TestNegativeSurgeNeedsCoverage(t *testing.T) {
	kpi := &models.KPI{ID: "fbr-tax", Name: "FBR Tax Collection"}
	var articles []*models.Article
	for d := 1; d <= 8; d++ {
		a := sentimentArticle(fmt.Sprintf("2026-01-%02d", d), models.SentimentNegative)
		a.KPIIDs = []string{"fbr-tax"}
		articles = append(articles, a)
	}
	for _, a := range DetectAnomalies(articles, []*models.KPI{kpi}, time.Now()) {
		if a.ID == "alert-negative-fbr-tax" {
			t.Error("thin coverage must not raise a surge alert")
		}
	}
}
