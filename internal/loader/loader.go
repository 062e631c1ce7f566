// Package loader fetches the four JSON artifacts produced by the batch
// pipeline and assembles them into an immutable snapshot.
//
// Loading is fail-open: any transport failure, non-2xx status, malformed
// body, or absent top-level field substitutes an empty collection instead
// of surfacing an error, so one missing artifact never blanks the whole
// dashboard.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/config"
	"github.com/pmo-intel/insight-hub/internal/models"
)

// Snapshot is one immutable load cycle of the four collections. A refresh
// replaces the whole snapshot; there is no incremental update.
type Snapshot struct {
	ID       string              `json:"id"`
	LoadedAt time.Time           `json:"loadedAt"`
	Articles []*models.Article   `json:"articles"`
	KPIs     []*models.KPI       `json:"kpis"`
	Trends   []models.TrendPoint `json:"trends"`
	Insights []*models.AIInsight `json:"insights"`
	Alerts   []*models.Alert     `json:"alerts"`
}

// emptySnapshot returns a snapshot with all collections empty but non-nil.
func emptySnapshot() *Snapshot {
	return &Snapshot{
		ID:       uuid.NewString(),
		LoadedAt: time.Now(),
		Articles: []*models.Article{},
		KPIs:     []*models.KPI{},
		Trends:   []models.TrendPoint{},
		Insights: []*models.AIInsight{},
		Alerts:   []*models.Alert{},
	}
}

type articlesEnvelope struct {
	Articles []*models.Article `json:"articles"`
}

type kpisEnvelope struct {
	KPIs []*models.KPI `json:"kpis"`
}

type trendsEnvelope struct {
	SentimentTrends []models.TrendPoint `json:"sentimentTrends"`
}

type insightsEnvelope struct {
	Insights []*models.AIInsight `json:"insights"`
	Alerts   []*models.Alert     `json:"alerts"`
}

// Client fetches dashboard artifacts over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	retries int
	httpc   *http.Client
	logger  *zap.Logger
}

// NewClient creates a loader client from the data config.
func NewClient(cfg *config.DataConfig, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		retries: cfg.Retries,
		httpc:   &http.Client{},
		logger:  logger,
	}
}

// Load fetches all four artifacts concurrently and assembles a snapshot.
// It never fails: each resource degrades to its empty collection.
func (c *Client) Load(ctx context.Context) *Snapshot {
	snap := emptySnapshot()

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		snap.Articles = c.loadArticles(ctx)
	}()
	go func() {
		defer wg.Done()
		snap.KPIs = c.loadKPIs(ctx)
	}()
	go func() {
		defer wg.Done()
		snap.Trends = c.loadTrends(ctx)
	}()
	go func() {
		defer wg.Done()
		snap.Insights, snap.Alerts = c.loadInsights(ctx)
	}()
	wg.Wait()

	c.logger.Info("snapshot loaded",
		zap.String("snapshot_id", snap.ID),
		zap.Int("articles", len(snap.Articles)),
		zap.Int("kpis", len(snap.KPIs)),
		zap.Int("trend_points", len(snap.Trends)),
		zap.Int("insights", len(snap.Insights)),
		zap.Int("alerts", len(snap.Alerts)),
	)
	return snap
}

func (c *Client) loadArticles(ctx context.Context) []*models.Article {
	var env articlesEnvelope
	if err := c.fetchJSON(ctx, "articles.json", &env); err != nil {
		c.logger.Warn("articles load failed, using empty collection", zap.Error(err))
		return []*models.Article{}
	}
	if env.Articles == nil {
		return []*models.Article{}
	}
	return env.Articles
}

func (c *Client) loadKPIs(ctx context.Context) []*models.KPI {
	var env kpisEnvelope
	if err := c.fetchJSON(ctx, "kpis.json", &env); err != nil {
		c.logger.Warn("kpis load failed, using empty collection", zap.Error(err))
		return []*models.KPI{}
	}
	if env.KPIs == nil {
		return []*models.KPI{}
	}
	return env.KPIs
}

func (c *Client) loadTrends(ctx context.Context) []models.TrendPoint {
	var env trendsEnvelope
	if err := c.fetchJSON(ctx, "trends.json", &env); err != nil {
		c.logger.Warn("trends load failed, using empty collection", zap.Error(err))
		return []models.TrendPoint{}
	}
	if env.SentimentTrends == nil {
		return []models.TrendPoint{}
	}
	return env.SentimentTrends
}

func (c *Client) loadInsights(ctx context.Context) ([]*models.AIInsight, []*models.Alert) {
	var env insightsEnvelope
	if err := c.fetchJSON(ctx, "insights.json", &env); err != nil {
		c.logger.Warn("insights load failed, using empty collections", zap.Error(err))
		return []*models.AIInsight{}, []*models.Alert{}
	}
	insights := env.Insights
	if insights == nil {
		insights = []*models.AIInsight{}
	}
	alerts := env.Alerts
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	return insights, alerts
}

// fetchJSON gets <baseURL>/<name> with a hard timeout and decodes into v.
// One bounded retry on transport failure; non-2xx and decode errors are
// not retried (the artifact is static, a bad body stays bad).
func (c *Client) fetchJSON(ctx context.Context, name string, v interface{}) error {
	var lastErr error
	attempts := c.retries + 1
	for i := 0; i < attempts; i++ {
		body, retryable, err := c.fetchOnce(ctx, name)
		if err == nil {
			if err := json.Unmarshal(body, v); err != nil {
				return fmt.Errorf("malformed %s: %w", name, err)
			}
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

func (c *Client) fetchOnce(ctx context.Context, name string) (body []byte, retryable bool, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/"+name, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request for %s: %w", name, err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, fmt.Errorf("fetch %s: status %d", name, resp.StatusCode)
	}
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read %s: %w", name, err)
	}
	return body, false, nil
}
