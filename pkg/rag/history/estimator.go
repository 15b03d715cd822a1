package history

import (
	"strings"
	"unicode/utf8"
)

// TokenEstimator approximates how many model tokens a piece of text costs.
// The reference accounting comes from the completion service itself; any
// estimator works here as long as it grows with message count; the compactor
// only relies on that monotonic relationship, not on exact counts.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// HeuristicEstimator is a local, zero-round-trip estimator: roughly one token
// per 4 characters, never less than the number of whitespace-separated words.
type HeuristicEstimator struct{}

func NewHeuristicEstimator() TokenEstimator {
	return HeuristicEstimator{}
}

func (HeuristicEstimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	byChars := (utf8.RuneCountInString(text) + 3) / 4
	byWords := len(strings.Fields(text))
	if byWords > byChars {
		return byWords
	}
	return byChars
}
