// Package search provides an optional in-memory full-text index over the
// article snapshot. The filter endpoint scans linearly and does not use
// this; the index only backs the dedicated search endpoint when enabled.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// Result is one search hit.
type Result struct {
	Article *models.Article `json:"article"`
	Score   float64         `json:"score"`
}

// Index is a Bleve mem-only index over article titles, summaries, and
// sources. Rebuilt wholesale on every snapshot swap.
type Index struct {
	mu       sync.RWMutex
	index    bleve.Index
	articles map[string]*models.Article
	logger   *zap.Logger
}

// indexDoc is the flattened shape handed to Bleve.
type indexDoc struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
}

// NewIndex creates an empty in-memory index.
func NewIndex(logger *zap.Logger) (*Index, error) {
	idx, err := newMemIndex()
	if err != nil {
		return nil, err
	}
	return &Index{
		index:    idx,
		articles: make(map[string]*models.Article),
		logger:   logger,
	}, nil
}

func newMemIndex() (bleve.Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so "tax"
	// matches exactly rather than through a stemmed form.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("summary", textFieldMapping)
	docMapping.AddFieldMappingsAt("source", textFieldMapping)
	im.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return idx, nil
}

// Rebuild replaces the index contents with the given articles.
func (ix *Index) Rebuild(ctx context.Context, articles []*models.Article) error {
	fresh, err := newMemIndex()
	if err != nil {
		return err
	}

	batch := fresh.NewBatch()
	byID := make(map[string]*models.Article, len(articles))
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			fresh.Close()
			return err
		}
		byID[a.ID] = a
		if err := batch.Index(a.ID, indexDoc{
			Title:   a.Title,
			Summary: a.Summary,
			Source:  a.Source,
		}); err != nil {
			fresh.Close()
			return fmt.Errorf("failed to index article %s: %w", a.ID, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		fresh.Close()
		return fmt.Errorf("failed to apply index batch: %w", err)
	}

	ix.mu.Lock()
	old := ix.index
	ix.index = fresh
	ix.articles = byID
	ix.mu.Unlock()
	if old != nil {
		old.Close()
	}

	ix.logger.Info("search index rebuilt", zap.Int("articles", len(articles)))
	return nil
}

// Search runs a match query over the indexed fields and returns up to
// limit hits, best first.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit

	results, err := ix.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	out := make([]*Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		article, ok := ix.articles[hit.ID]
		if !ok {
			continue
		}
		out = append(out, &Result{Article: article, Score: hit.Score})
	}
	return out, nil
}

// Count returns the number of indexed articles.
func (ix *Index) Count() (uint64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.index.DocCount()
}

// Close releases the index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.index == nil {
		return nil
	}
	err := ix.index.Close()
	ix.index = nil
	return err
}
