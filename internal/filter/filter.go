// Package filter applies multi-criteria article filtering for the dashboard.
//
// All predicates are AND-combined; an empty predicate matches everything.
// The engine is a single linear pass in input order — collections here are
// hundreds to low thousands of rows, so no index is built (the optional
// full-text index in internal/search serves a separate endpoint).
package filter

import (
	"strings"
	"time"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// Query is a conjunction of article predicates. Zero-valued fields are
// no-ops.
type Query struct {
	// Search matches case-insensitively as a substring of title, summary,
	// or source.
	Search string
	// Sources requires exact membership of the article's source.
	Sources []string
	// KPIIDs requires a non-empty intersection with the article's kpiIds.
	KPIIDs []string
	// From/To bound publishedAt inclusively; either side may be open.
	From *time.Time
	To   *time.Time
}

// IsEmpty reports whether no predicate is active.
func (q *Query) IsEmpty() bool {
	return q.Search == "" && len(q.Sources) == 0 && len(q.KPIIDs) == 0 &&
		q.From == nil && q.To == nil
}

// Apply returns the articles matching q, preserving input order.
// An all-empty query returns the input slice unchanged.
func Apply(articles []*models.Article, q *Query) []*models.Article {
	if q == nil || q.IsEmpty() {
		return articles
	}

	search := strings.ToLower(q.Search)
	sources := toSet(q.Sources)
	kpis := toSet(q.KPIIDs)

	out := make([]*models.Article, 0, len(articles))
	for _, a := range articles {
		if !matchSearch(a, search) {
			continue
		}
		if len(sources) > 0 && !sources[a.Source] {
			continue
		}
		if len(kpis) > 0 && !intersects(a.KPIIDs, kpis) {
			continue
		}
		if q.From != nil && a.PublishedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && a.PublishedAt.After(*q.To) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matchSearch(a *models.Article, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Title), search) ||
		strings.Contains(strings.ToLower(a.Summary), search) ||
		strings.Contains(strings.ToLower(a.Source), search)
}

func toSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

func intersects(ids []string, set map[string]bool) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}
