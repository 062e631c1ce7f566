// Package pipeline implements the batch job that turns scraped article
// drops (CSV trees and RSS feeds) into the four JSON artifacts the
// dashboard consumes: articles, KPIs, sentiment trends, and
// insights/alerts.
package pipeline

import "github.com/pmo-intel/insight-hub/internal/models"

// Definition describes one tracked KPI: identity, prose, and the keyword
// list used for relevance scoring.
type Definition struct {
	ID          string
	Name        string
	Description string
	Category    string
	Keywords    []string
}

// PowerKPIs are the energy-sector indicators.
var PowerKPIs = []Definition{
	{
		ID:          "td-losses",
		Name:        "T&D Losses",
		Keywords:    []string{"T&D loss", "transmission loss", "distribution loss", "line loss"},
		Category:    "Energy",
		Description: "Transmission and distribution losses in the power sector",
	},
	{
		ID:          "circular-debt",
		Name:        "Circular Debt",
		Keywords:    []string{"circular debt", "power sector debt"},
		Category:    "Energy",
		Description: "Circular debt crisis in the power sector",
	},
	{
		ID:          "electricity-recovery",
		Name:        "Electricity Recovery",
		Keywords:    []string{"electricity recovery", "bill recovery", "power recovery"},
		Category:    "Energy",
		Description: "Electricity bill recovery and collection rates",
	},
	{
		ID:          "imported-electricity",
		Name:        "Imported Electricity",
		Keywords:    []string{"imported electricity", "power import", "energy import"},
		Category:    "Energy",
		Description: "Electricity imported from neighboring countries",
	},
	{
		ID:          "power-sector",
		Name:        "Power Sector",
		Keywords:    []string{"power sector", "electricity sector", "energy sector", "Nepra", "Disco", "IPP"},
		Category:    "Energy",
		Description: "Overall power sector performance and stability",
	},
}

// TaxKPIs are the taxation indicators.
var TaxKPIs = []Definition{
	{
		ID:          "fbr-tax",
		Name:        "FBR Tax Collection",
		Keywords:    []string{"FBR", "Federal Board of Revenue", "tax revenue"},
		Category:    "Taxation",
		Description: "Federal Board of Revenue tax collection",
	},
	{
		ID:          "tax-to-gdp",
		Name:        "Tax-to-GDP Ratio",
		Keywords:    []string{"tax-to-GDP", "tax to GDP", "tax GDP ratio"},
		Category:    "Taxation",
		Description: "Tax collection as percentage of GDP",
	},
	{
		ID:          "tax-collection",
		Name:        "Tax Collection",
		Keywords:    []string{"tax collection", "revenue collection", "tax receipts"},
		Category:    "Taxation",
		Description: "Overall tax collection performance",
	},
	{
		ID:          "tax-expenditure",
		Name:        "Tax Expenditure",
		Keywords:    []string{"tax expenditure", "tax exemption", "tax concession"},
		Category:    "Taxation",
		Description: "Tax expenditures and exemptions",
	},
	{
		ID:          "direct-taxes",
		Name:        "Direct Taxes",
		Keywords:    []string{"direct tax", "income tax", "corporate tax"},
		Category:    "Taxation",
		Description: "Direct taxation revenue",
	},
	{
		ID:          "withholding-taxes",
		Name:        "Withholding Taxes",
		Keywords:    []string{"withholding tax", "WHT", "advance tax"},
		Category:    "Taxation",
		Description: "Withholding tax collection",
	},
}

// AllKPIs returns the full catalog, power first.
func AllKPIs() []Definition {
	out := make([]Definition, 0, len(PowerKPIs)+len(TaxKPIs))
	out = append(out, PowerKPIs...)
	out = append(out, TaxKPIs...)
	return out
}

// DefinitionsFor returns the catalog slice for an article category.
func DefinitionsFor(category models.Category) []Definition {
	switch category {
	case models.CategoryPower:
		return PowerKPIs
	case models.CategoryTax:
		return TaxKPIs
	default:
		return nil
	}
}

// sourceCredibility maps known outlets to editorial credibility scores.
var sourceCredibility = map[string]float64{
	"Dawn":              95,
	"Business Recorder": 90,
	"The News":          88,
	"Express Tribune":   92,
	"Geo News":          85,
}

// defaultCredibility applies to outlets missing from the table.
const defaultCredibility = 85

// CredibilityFor returns the credibility score for a source.
func CredibilityFor(source string) float64 {
	if score, ok := sourceCredibility[source]; ok {
		return score
	}
	return defaultCredibility
}
