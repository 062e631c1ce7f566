package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// qualifyThreshold is the relevance score above which an article counts
// as covering a KPI. Strictly greater than.
const qualifyThreshold = 30.0

// Processor scores raw articles and assembles the dashboard records.
type Processor struct {
	relevance *RelevanceScorer
	logger    *zap.Logger
}

// NewProcessor creates a processor using the given relevance scorer.
func NewProcessor(relevance *RelevanceScorer, logger *zap.Logger) *Processor {
	return &Processor{relevance: relevance, logger: logger}
}

// Process scores every raw article and returns the finished records,
// ordered newest first. Articles that fail scoring are logged and
// dropped rather than aborting the batch.
func (p *Processor) Process(ctx context.Context, raws []RawArticle) ([]*models.Article, error) {
	// Per-(source, date, category) counters keep ids deterministic
	// across runs over the same drop.
	counters := make(map[string]int)

	articles := make([]*models.Article, 0, len(raws))
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		article, err := p.processOne(ctx, raw, counters)
		if err != nil {
			p.logger.Warn("failed to process article, dropping",
				zap.String("headline", raw.Headline),
				zap.Error(err))
			continue
		}
		articles = append(articles, article)
	}

	sort.Slice(articles, func(i, j int) bool {
		if !articles[i].PublishedAt.Equal(articles[j].PublishedAt) {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		}
		return articles[i].ID < articles[j].ID
	})

	p.logger.Info("processed articles",
		zap.Int("in", len(raws)),
		zap.Int("out", len(articles)))
	return articles, nil
}

func (p *Processor) processOne(ctx context.Context, raw RawArticle, counters map[string]int) (*models.Article, error) {
	key := fmt.Sprintf("%s-%s-%s", raw.SourceKey, raw.Date.Format("2006-01-02"), raw.Category)
	counters[key]++

	text := raw.Headline
	if raw.Summary != "" {
		text += ". " + raw.Summary
	}
	if raw.FullText != "" {
		text += " " + raw.FullText
	}

	sentiment, score := ScoreSentiment(text)

	relevance, err := p.relevance.Score(ctx, text, raw.Category)
	if err != nil {
		return nil, err
	}

	kpiIDs := make([]string, 0, len(relevance))
	for id, rel := range relevance {
		if rel > qualifyThreshold {
			kpiIDs = append(kpiIDs, id)
		}
	}
	sort.Strings(kpiIDs)

	summary := raw.Summary
	if summary == "" {
		summary = firstSentence(raw.FullText)
	}

	return &models.Article{
		ID:             fmt.Sprintf("%s-%d", key, counters[key]),
		Title:          raw.Headline,
		Source:         raw.Source,
		Category:       raw.Category,
		PublishedAt:    raw.Date,
		Summary:        summary,
		FullText:       raw.FullText,
		URL:            raw.URL,
		Author:         raw.Author,
		Sentiment:      sentiment,
		SentimentScore: score,
		KPIIDs:         kpiIDs,
		KPIRelevance:   relevance,
		ExtractedTerms: ExtractTerms(text),
		Credibility:    CredibilityFor(raw.Source),
	}, nil
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".!?"); i > 0 && i < len(text)-1 {
		return text[:i+1]
	}
	if len(text) > 200 {
		return text[:200]
	}
	return text
}
