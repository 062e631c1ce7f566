package pipeline

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// RawArticle is one scraped article before scoring. Produced by the CSV
// and feed ingesters, consumed by the processor.
type RawArticle struct {
	Headline  string
	Summary   string
	FullText  string
	URL       string
	Author    string
	SourceKey string
	Source    string
	Date      time.Time
	Category  models.Category
}

// sourceNames maps scraper directory keys to display names.
var sourceNames = map[string]string{
	"dawn":      "Dawn",
	"brecorder": "Business Recorder",
	"thenews":   "The News",
	"tribune":   "Express Tribune",
	"geo":       "Geo News",
}

// SourceName resolves a scraper key to its outlet display name. Unknown
// keys are title-cased as a fallback.
func SourceName(key string) string {
	if name, ok := sourceNames[key]; ok {
		return name
	}
	if key == "" {
		return "Unknown"
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

// CSV column headers emitted by the scrapers, matched case-insensitively.
const (
	colHeadline = "article headline"
	colSummary  = "summary"
	colText     = "article text"
	colLink     = "article link"
	colAuthor   = "author"
)

// ReadCSVTree walks dataDir for scraper drops laid out as
// <source>/<date>/<category>.csv and returns the raw articles in walk
// order. Unreadable or malformed files are logged and skipped; the walk
// itself failing is an error.
func ReadCSVTree(dataDir string, logger *zap.Logger) ([]RawArticle, error) {
	var out []RawArticle
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}

		rel, relErr := filepath.Rel(dataDir, path)
		if relErr != nil {
			return relErr
		}
		sourceKey, date, category, ok := parseDropPath(rel)
		if !ok {
			logger.Warn("skipping CSV outside expected source/date/category layout",
				zap.String("path", rel))
			return nil
		}

		rows, readErr := readCSVFile(path)
		if readErr != nil {
			logger.Warn("skipping unreadable CSV", zap.String("path", rel), zap.Error(readErr))
			return nil
		}
		for _, row := range rows {
			row.SourceKey = sourceKey
			row.Source = SourceName(sourceKey)
			row.Date = date
			row.Category = category
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk data directory: %w", err)
	}
	return out, nil
}

// parseDropPath extracts (source, date, category) from a relative drop
// path like dawn/2026-01-21/power.csv.
func parseDropPath(rel string) (string, time.Time, models.Category, bool) {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return "", time.Time{}, "", false
	}
	date, err := time.Parse("2006-01-02", parts[1])
	if err != nil {
		return "", time.Time{}, "", false
	}
	category := models.Category(strings.TrimSuffix(strings.ToLower(parts[2]), ".csv"))
	if category != models.CategoryPower && category != models.CategoryTax {
		return "", time.Time{}, "", false
	}
	return strings.ToLower(parts[0]), date, category, true
}

// readCSVFile parses one scraper CSV. The header row names columns;
// missing optional columns yield empty fields. Rows without a headline
// are dropped.
func readCSVFile(path string) ([]RawArticle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	idx := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx[colHeadline]; !ok {
		return nil, fmt.Errorf("missing %q column", colHeadline)
	}

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []RawArticle
	for _, row := range records[1:] {
		headline := field(row, colHeadline)
		if headline == "" {
			continue
		}
		out = append(out, RawArticle{
			Headline: headline,
			Summary:  field(row, colSummary),
			FullText: field(row, colText),
			URL:      field(row, colLink),
			Author:   field(row, colAuthor),
		})
	}
	return out, nil
}
