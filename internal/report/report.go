// Package report exports a dashboard snapshot as an Excel workbook for
// offline circulation.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pmo-intel/insight-hub/internal/loader"
	"github.com/pmo-intel/insight-hub/internal/stats"
)

const (
	sheetOverview = "Overview"
	sheetKPIs     = "KPIs"
	sheetArticles = "Articles"
	sheetAlerts   = "Alerts"
)

// maxArticleRows bounds the Articles sheet so a big corpus does not
// produce an unwieldy workbook.
const maxArticleRows = 500

// Write renders the snapshot into an xlsx workbook at path.
func Write(snap *loader.Snapshot, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeOverview(f, snap); err != nil {
		return err
	}
	if err := writeKPIs(f, snap); err != nil {
		return err
	}
	if err := writeArticles(f, snap); err != nil {
		return err
	}
	if err := writeAlerts(f, snap); err != nil {
		return err
	}
	if err := writeKPIHistory(f, snap); err != nil {
		return err
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func writeOverview(f *excelize.File, snap *loader.Snapshot) error {
	if _, err := f.NewSheet(sheetOverview); err != nil {
		return err
	}
	s := stats.Compute(snap.Articles, snap.KPIs)
	rows := [][]interface{}{
		{"Snapshot", snap.ID},
		{"Loaded at", snap.LoadedAt.Format("2006-01-02 15:04:05")},
		{"Total articles", s.TotalArticles},
		{"Articles today", s.ArticlesToday},
		{"Average sentiment", s.AvgSentiment},
		{"Active KPIs", s.ActiveKPIs},
		{"Open alerts", len(snap.Alerts)},
		{"Insights", len(snap.Insights)},
	}
	for i, row := range rows {
		if err := writeRow(f, sheetOverview, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeKPIs(f *excelize.File, snap *loader.Snapshot) error {
	if _, err := f.NewSheet(sheetKPIs); err != nil {
		return err
	}
	if err := writeHeader(f, sheetKPIs, []string{
		"ID", "Name", "Category", "Current", "Previous", "Trend", "Articles", "Last Updated",
	}); err != nil {
		return err
	}
	for i, k := range snap.KPIs {
		err := writeRow(f, sheetKPIs, i+2, []interface{}{
			k.ID, k.Name, k.Category, k.CurrentScore, k.PreviousScore,
			string(k.Trend), k.ArticleCount, k.LastUpdated.Format("2006-01-02"),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeArticles(f *excelize.File, snap *loader.Snapshot) error {
	if _, err := f.NewSheet(sheetArticles); err != nil {
		return err
	}
	if err := writeHeader(f, sheetArticles, []string{
		"ID", "Title", "Source", "Category", "Published", "Sentiment", "Score", "KPIs", "URL",
	}); err != nil {
		return err
	}
	articles := snap.Articles
	if len(articles) > maxArticleRows {
		articles = articles[:maxArticleRows]
	}
	for i, a := range articles {
		kpis := ""
		for j, id := range a.KPIIDs {
			if j > 0 {
				kpis += ", "
			}
			kpis += id
		}
		err := writeRow(f, sheetArticles, i+2, []interface{}{
			a.ID, a.Title, a.Source, string(a.Category),
			a.PublishedAt.Format("2006-01-02"), string(a.Sentiment),
			a.SentimentScore, kpis, a.URL,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// writeKPIHistory adds one sheet per KPI holding its historical series.
// KPIs without history get no sheet.
func writeKPIHistory(f *excelize.File, snap *loader.Snapshot) error {
	for _, k := range snap.KPIs {
		if len(k.Historical) == 0 {
			continue
		}
		// Sheet names cap at 31 characters.
		name := k.ID
		if len(name) > 31 {
			name = name[:31]
		}
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeHeader(f, name, []string{"Date", "Score", "Articles"}); err != nil {
			return err
		}
		for i, p := range k.Historical {
			if err := writeRow(f, name, i+2, []interface{}{p.Date, p.Score, p.ArticleCount}); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeAlerts(f *excelize.File, snap *loader.Snapshot) error {
	if _, err := f.NewSheet(sheetAlerts); err != nil {
		return err
	}
	if err := writeHeader(f, sheetAlerts, []string{
		"ID", "Title", "Severity", "Status", "KPI", "Created", "Description",
	}); err != nil {
		return err
	}
	for i, a := range snap.Alerts {
		err := writeRow(f, sheetAlerts, i+2, []interface{}{
			a.ID, a.Title, string(a.Severity), string(a.Status), a.KPIID,
			a.CreatedAt.Format("2006-01-02"), a.Description,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
