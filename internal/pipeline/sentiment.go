package pipeline

import (
	"strings"

	"github.com/pmo-intel/insight-hub/internal/models"
)

// Lexicons for the sentiment scorer. Phrases are matched as substrings of
// the lowercased text so multi-word entries work without tokenization.
var positiveTerms = []string{
	"improve", "improvement", "increase", "growth", "surge", "surpass",
	"exceed", "record high", "recovery", "reform", "success", "gain",
	"boost", "reduce losses", "reduction in losses", "progress", "achieve",
	"milestone", "strengthen", "stabilize", "upgrade", "relief",
}

var negativeTerms = []string{
	"decline", "decrease", "fall", "drop", "loss", "losses", "crisis",
	"shortfall", "deficit", "fail", "failure", "default", "theft",
	"corruption", "mismanagement", "outage", "blackout", "load shedding",
	"loadshedding", "debt mounts", "missed target", "below target",
	"concern", "warn", "slump", "worsen",
}

// neutralBand is the score magnitude below which an article is neutral.
const neutralBand = 0.3

// ScoreSentiment scores text on [-1, 1] and labels it. Texts with no
// lexicon hits score 0 and read as neutral.
func ScoreSentiment(text string) (models.Sentiment, float64) {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, term := range positiveTerms {
		pos += strings.Count(lower, term)
	}
	for _, term := range negativeTerms {
		neg += strings.Count(lower, term)
	}

	total := pos + neg
	if total == 0 {
		return models.SentimentNeutral, 0
	}

	score := float64(pos-neg) / float64(total)
	// Dampen thin evidence so a single lexicon hit cannot swing an
	// article out of the neutral band.
	if total < 4 {
		score *= float64(total) / 4
	}
	score = round2(score)

	switch {
	case score > neutralBand:
		return models.SentimentPositive, score
	case score < -neutralBand:
		return models.SentimentNegative, score
	default:
		return models.SentimentNeutral, score
	}
}
