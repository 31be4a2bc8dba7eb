package complexity

import (
	"strings"

	"github.com/af-corp/relay/internal/types"
)

// Signal weights and caps. The three signals accumulate independently,
// each capped on its own, then the total is capped at 1.0.
const (
	longTextScore   = 0.45 // >200 words
	mediumTextScore = 0.25 // >80 words
	shortTextScore  = 0.08

	complexKeywordScore = 0.14
	complexKeywordCap   = 0.50

	mediumKeywordScore = 0.12
	mediumKeywordCap   = 0.36

	complexThreshold = 0.50
	mediumThreshold  = 0.24
)

var complexKeywords = []string{
	"architecture",
	"legal",
	"medical",
	"diagnose",
	"optimize",
	"multi-step",
	"root cause",
	"regulatory",
	"compliance",
	"trade-off",
}

var mediumKeywords = []string{
	"analyze",
	"compare",
	"summarize",
	"plan",
	"evaluate",
	"design",
	"explain",
	"recommend",
}

// Score classifies user text into a route tier with a score in [0,1].
// It is a pure heuristic: near-zero latency and zero cost, deliberately
// not a model call. Empty text scores 0 and routes simple.
func Score(text string) (types.RouteTier, float64) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return types.TierSimple, 0
	}

	lower := strings.ToLower(trimmed)
	score := lengthSignal(lower)
	score += keywordSignal(lower, complexKeywords, complexKeywordScore, complexKeywordCap)
	score += keywordSignal(lower, mediumKeywords, mediumKeywordScore, mediumKeywordCap)
	if score > 1.0 {
		score = 1.0
	}

	switch {
	case score >= complexThreshold:
		return types.TierComplex, score
	case score >= mediumThreshold:
		return types.TierMedium, score
	default:
		return types.TierSimple, score
	}
}

func lengthSignal(text string) float64 {
	words := len(strings.Fields(text))
	switch {
	case words > 200:
		return longTextScore
	case words > 80:
		return mediumTextScore
	default:
		return shortTextScore
	}
}

// keywordSignal counts every occurrence of every keyword and weights it,
// capping the signal's total contribution.
func keywordSignal(text string, keywords []string, weight, limit float64) float64 {
	total := 0.0
	for _, kw := range keywords {
		if n := strings.Count(text, kw); n > 0 {
			total += float64(n) * weight
		}
	}
	if total > limit {
		return limit
	}
	return total
}
