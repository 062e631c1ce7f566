package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// Output holds the finished collections of one pipeline run.
type Output struct {
	Articles    []*models.Article
	KPIs        []*models.KPI
	Trends      []models.TrendPoint
	Insights    []*models.AIInsight
	Alerts      []*models.Alert
	GeneratedAt time.Time
}

// Envelope shapes for the four JSON artifacts. The loader package decodes
// the same field names on the way back in.
type articlesArtifact struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Count       int               `json:"count"`
	Articles    []*models.Article `json:"articles"`
}

type kpisArtifact struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	KPIs        []*models.KPI `json:"kpis"`
}

type trendsArtifact struct {
	GeneratedAt     time.Time           `json:"generatedAt"`
	SentimentTrends []models.TrendPoint `json:"sentimentTrends"`
}

type insightsArtifact struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	Insights    []*models.AIInsight `json:"insights"`
	Alerts      []*models.Alert     `json:"alerts"`
}

// WriteOutputs writes the four artifacts into dir. Each file is written
// to a temp sibling and renamed into place so a watcher or reader never
// sees a half-written artifact.
func WriteOutputs(dir string, out *Output) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := map[string]interface{}{
		"articles.json": articlesArtifact{
			GeneratedAt: out.GeneratedAt,
			Count:       len(out.Articles),
			Articles:    out.Articles,
		},
		"kpis.json": kpisArtifact{
			GeneratedAt: out.GeneratedAt,
			KPIs:        out.KPIs,
		},
		"trends.json": trendsArtifact{
			GeneratedAt:     out.GeneratedAt,
			SentimentTrends: out.Trends,
		},
		"insights.json": insightsArtifact{
			GeneratedAt: out.GeneratedAt,
			Insights:    out.Insights,
			Alerts:      out.Alerts,
		},
	}

	for name, payload := range files {
		if err := writeAtomic(filepath.Join(dir, name), payload); err != nil {
			return err
		}
	}
	return nil
}

func writeAtomic(path string, payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
