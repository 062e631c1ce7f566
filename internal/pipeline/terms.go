package pipeline

import "strings"

// knownTerms are domain entities worth surfacing as article tags.
var knownTerms = []string{
	"NEPRA", "FBR", "IMF", "GDP", "IPP", "DISCO", "K-Electric", "WAPDA",
	"PSO", "OGDC", "circular debt", "T&D losses", "load shedding",
	"tariff", "subsidy", "withholding tax", "sales tax", "income tax",
	"tax-to-GDP", "privatization", "World Bank", "ADB",
}

// maxExtractedTerms bounds the tag list per article.
const maxExtractedTerms = 8

// ExtractTerms pulls known domain terms out of text, preserving catalog
// casing and order of first definition.
func ExtractTerms(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, term := range knownTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			out = append(out, term)
			if len(out) == maxExtractedTerms {
				break
			}
		}
	}
	return out
}
