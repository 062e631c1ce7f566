package pipeline

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/models"
)

func newKeywordProcessor(t *testing.T) *Processor {
	t.Helper()
	scorer, err := NewRelevanceScorer(context.Background(), nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRelevanceScorer: %v", err)
	}
	return NewProcessor(scorer, zap.NewNop())
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestProcessAssignsDeterministicIDs(t *testing.T) {
	raws := []RawArticle{
		{Headline: "First", SourceKey: "dawn", Source: "Dawn", Date: day("2026-01-21"), Category: models.CategoryPower},
		{Headline: "Second", SourceKey: "dawn", Source: "Dawn", Date: day("2026-01-21"), Category: models.CategoryPower},
		{Headline: "Other day", SourceKey: "dawn", Source: "Dawn", Date: day("2026-01-22"), Category: models.CategoryPower},
	}

	articles, err := newKeywordProcessor(t).Process(context.Background(), raws)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("got %d articles, want 3", len(articles))
	}

	ids := make(map[string]bool)
	for _, a := range articles {
		ids[a.ID] = true
	}
	for _, want := range []string{
		"dawn-2026-01-21-power-1",
		"dawn-2026-01-21-power-2",
		"dawn-2026-01-22-power-1",
	} {
		if !ids[want] {
			t.Errorf("missing id %s", want)
		}
	}
}

func TestProcessOrdersNewestFirst(t *testing.T) {
	raws := []RawArticle{
		{Headline: "Old", SourceKey: "dawn", Source: "Dawn", Date: day("2026-01-10"), Category: models.CategoryTax},
		{Headline: "New", SourceKey: "dawn", Source: "Dawn", Date: day("2026-01-20"), Category: models.CategoryTax},
		{Headline: "Middle", SourceKey: "geo", Source: "Geo News", Date: day("2026-01-15"), Category: models.CategoryTax},
	}
	articles, err := newKeywordProcessor(t).Process(context.Background(), raws)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := 1; i < len(articles); i++ {
		if articles[i].PublishedAt.After(articles[i-1].PublishedAt) {
			t.Fatalf("articles out of order at %d: %s after %s",
				i, articles[i].PublishedAt, articles[i-1].PublishedAt)
		}
	}
}

func TestProcessQualifiesKPIs(t *testing.T) {
	raws := []RawArticle{{
		Headline:  "Circular debt crosses record as power sector debt mounts",
		Summary:   "The circular debt stock rose again",
		SourceKey: "dawn",
		Source:    "Dawn",
		Date:      day("2026-01-21"),
		Category:  models.CategoryPower,
	}}

	articles, err := newKeywordProcessor(t).Process(context.Background(), raws)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	a := articles[0]

	// Both circular-debt keywords hit: relevance 100, well over threshold.
	if !a.References("circular-debt") {
		t.Errorf("kpiIds = %v, want circular-debt qualified", a.KPIIDs)
	}
	if a.RelevanceFor("circular-debt") != 100 {
		t.Errorf("relevance = %v, want 100", a.RelevanceFor("circular-debt"))
	}
	// All power KPIs scored even when not qualified.
	if len(a.KPIRelevance) != len(PowerKPIs) {
		t.Errorf("got %d relevance entries, want %d", len(a.KPIRelevance), len(PowerKPIs))
	}
	for _, id := range a.KPIIDs {
		if a.KPIRelevance[id] <= qualifyThreshold {
			t.Errorf("qualified %s has relevance %v, want > %v", id, a.KPIRelevance[id], qualifyThreshold)
		}
	}

	if a.Credibility != 95 {
		t.Errorf("credibility = %v, want 95 for Dawn", a.Credibility)
	}
	if a.Sentiment == "" {
		t.Error("sentiment must be set")
	}
	if len(a.ExtractedTerms) == 0 {
		t.Error("expected extracted terms for circular debt text")
	}
}

func TestProcessDerivesSummary(t *testing.T) {
	raws := []RawArticle{{
		Headline:  "Headline only",
		FullText:  "Lead sentence of the body. Second sentence continues.",
		SourceKey: "dawn",
		Source:    "Dawn",
		Date:      day("2026-01-21"),
		Category:  models.CategoryPower,
	}}
	articles, err := newKeywordProcessor(t).Process(context.Background(), raws)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := articles[0].Summary; got != "Lead sentence of the body." {
		t.Errorf("summary = %q", got)
	}
}
