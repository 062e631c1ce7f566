package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/config"
	"github.com/pmo-intel/insight-hub/internal/embedding"
)

// Runner wires the full batch: ingest, score, aggregate, write.
type Runner struct {
	cfg      *config.PipelineConfig
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewRunner creates a pipeline runner. When the config names an ONNX
// model it is loaded up front; otherwise relevance scoring is
// keyword-only and topic clustering is skipped.
func NewRunner(cfg *config.PipelineConfig, logger *zap.Logger) (*Runner, error) {
	r := &Runner{cfg: cfg, logger: logger}
	if cfg.ModelPath != "" {
		embedder, err := embedding.NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("failed to load embedding model: %w", err)
		}
		r.embedder = embedder
		logger.Info("embedding model loaded",
			zap.String("path", cfg.ModelPath),
			zap.Int("dimensions", cfg.Dimensions))
	}
	return r, nil
}

// Close releases the embedding model, if any.
func (r *Runner) Close() error {
	if r.embedder != nil {
		return r.embedder.Close()
	}
	return nil
}

// Run executes one full batch and writes the four artifacts to the
// configured output directory.
func (r *Runner) Run(ctx context.Context) (*Output, error) {
	started := time.Now()

	raws, err := ReadCSVTree(r.cfg.DataDir, r.logger)
	if err != nil {
		return nil, err
	}
	r.logger.Info("ingested CSV drops", zap.Int("articles", len(raws)))

	if len(r.cfg.Feeds) > 0 {
		fetcher := NewFeedFetcher(30*time.Second, r.logger)
		feedRaws := fetcher.Fetch(ctx, r.cfg.Feeds)
		r.logger.Info("ingested feeds",
			zap.Int("feeds", len(r.cfg.Feeds)),
			zap.Int("articles", len(feedRaws)))
		raws = append(raws, feedRaws...)
	}

	scorer, err := NewRelevanceScorer(ctx, r.embedder, r.logger)
	if err != nil {
		return nil, err
	}

	articles, err := NewProcessor(scorer, r.logger).Process(ctx, raws)
	if err != nil {
		return nil, err
	}

	if err := ClusterTopics(ctx, r.embedder, articles, r.logger); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := &Output{
		Articles:    articles,
		KPIs:        GenerateKPIs(articles, now),
		Trends:      GenerateTrends(articles),
		GeneratedAt: now,
	}
	out.Alerts = DetectAnomalies(articles, out.KPIs, now)
	out.Insights = GenerateInsights(articles, out.KPIs, now)

	if err := WriteOutputs(r.cfg.OutputDir, out); err != nil {
		return nil, err
	}

	r.logger.Info("pipeline run complete",
		zap.Int("articles", len(out.Articles)),
		zap.Int("kpis", len(out.KPIs)),
		zap.Int("alerts", len(out.Alerts)),
		zap.Int("insights", len(out.Insights)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return out, nil
}
