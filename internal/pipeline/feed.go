package pipeline

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/config"
	"github.com/pmo-intel/insight-hub/internal/models"
)

// FeedFetcher pulls articles from configured RSS feeds to supplement the
// CSV drops.
type FeedFetcher struct {
	parser *gofeed.Parser
	logger *zap.Logger
}

// NewFeedFetcher creates a fetcher with the given per-feed request
// timeout, so one hung feed cannot stall the whole batch.
func NewFeedFetcher(timeout time.Duration, logger *zap.Logger) *FeedFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "insighthub/1.0"
	parser.Client = &http.Client{Timeout: timeout}
	return &FeedFetcher{parser: parser, logger: logger}
}

// Fetch retrieves all configured feeds. A failing feed is logged and
// skipped; the remaining feeds still contribute.
func (f *FeedFetcher) Fetch(ctx context.Context, feeds []config.FeedConfig) []RawArticle {
	var out []RawArticle
	for _, fc := range feeds {
		items, err := f.fetchOne(ctx, fc)
		if err != nil {
			f.logger.Warn("failed to fetch feed, skipping",
				zap.String("url", fc.URL),
				zap.Error(err))
			continue
		}
		out = append(out, items...)
	}
	return out
}

func (f *FeedFetcher) fetchOne(ctx context.Context, fc config.FeedConfig) ([]RawArticle, error) {
	feed, err := f.parser.ParseURLWithContext(fc.URL, ctx)
	if err != nil {
		return nil, err
	}

	category := models.Category(strings.ToLower(fc.Category))
	var out []RawArticle
	for _, item := range feed.Items {
		if item.Title == "" {
			continue
		}
		cat := category
		if cat != models.CategoryPower && cat != models.CategoryTax {
			var ok bool
			if cat, ok = inferCategory(item.Title + " " + item.Description); !ok {
				continue
			}
		}
		published := time.Now().UTC()
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}
		author := ""
		if len(item.Authors) > 0 {
			author = item.Authors[0].Name
		}
		sourceKey := strings.ToLower(strings.ReplaceAll(fc.Source, " ", ""))
		out = append(out, RawArticle{
			Headline:  item.Title,
			Summary:   stripHTML(item.Description),
			FullText:  stripHTML(item.Content),
			URL:       item.Link,
			Author:    author,
			SourceKey: sourceKey,
			Source:    fc.Source,
			Date:      published,
			Category:  cat,
		})
	}
	return out, nil
}

// inferCategory classifies a feed item by keyword when the feed config
// does not pin a category. Items matching neither desk are dropped.
func inferCategory(text string) (models.Category, bool) {
	lower := strings.ToLower(text)
	for _, kw := range []string{"electricity", "power", "energy", "nepra", "circular debt", "tariff"} {
		if strings.Contains(lower, kw) {
			return models.CategoryPower, true
		}
	}
	for _, kw := range []string{"tax", "fbr", "revenue", "fiscal", "customs"} {
		if strings.Contains(lower, kw) {
			return models.CategoryTax, true
		}
	}
	return "", false
}

// stripHTML reduces feed markup to plain text.
func stripHTML(html string) string {
	if html == "" || !strings.Contains(html, "<") {
		return strings.TrimSpace(html)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}
