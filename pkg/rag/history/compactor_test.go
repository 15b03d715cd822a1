package history

import (
	"strings"
	"testing"

	"doc-chat-be/pkg/store"
)

// countingEstimator charges a fixed cost per line of transcript.
type countingEstimator struct {
	perLine int
}

func (e countingEstimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return e.perLine * len(strings.Split(text, "\n"))
}

func turns(n int) []store.Turn {
	out := make([]store.Turn, n)
	for i := range out {
		speaker := store.SpeakerUser
		if i%2 == 1 {
			speaker = store.SpeakerBot
		}
		out[i] = store.Turn{Speaker: speaker, Message: "message"}
	}
	return out
}

func TestCompactUnderBudgetKeepsEverything(t *testing.T) {
	c := NewCompactor(countingEstimator{perLine: 1}, 100)

	history := turns(10)
	retained := c.Compact(history, "answer")
	if len(retained) != 10 {
		t.Errorf("retained %d turns, want 10", len(retained))
	}
}

func TestCompactDropsOldestFirst(t *testing.T) {
	// 10 history lines + 1 answer line at 10 tokens each against a budget of
	// 80 forces dropping 3 of the oldest turns.
	c := NewCompactor(countingEstimator{perLine: 10}, 80)

	history := turns(10)
	history[0].Message = "oldest"
	history[9].Message = "newest"

	retained := c.Compact(history, "answer")
	if len(retained) != 7 {
		t.Fatalf("retained %d turns, want 7", len(retained))
	}
	if retained[0].Message == "oldest" {
		t.Error("oldest turn survived compaction")
	}
	if retained[len(retained)-1].Message != "newest" {
		t.Error("newest turn was dropped")
	}
}

func TestCompactAdversarialEstimatorTerminates(t *testing.T) {
	// Estimator that always exceeds any budget: the loop must still halt,
	// at an empty history.
	c := NewCompactor(countingEstimator{perLine: 1 << 30}, 2500)

	retained := c.Compact(turns(50), "answer")
	if len(retained) != 0 {
		t.Errorf("retained %d turns, want 0", len(retained))
	}
}

func TestCompactNeverTouchesAnswer(t *testing.T) {
	c := NewCompactor(countingEstimator{perLine: 1 << 30}, 1)

	answer := "the full answer"
	_ = c.Compact(turns(4), answer)
	// Compact only returns a history suffix; the answer string is the
	// caller's and cannot be shortened here. Nothing to assert beyond the
	// signature, but dropping to empty must still have happened.
	if got := c.Dropped(turns(4), answer); got != 4 {
		t.Errorf("Dropped() = %d, want 4", got)
	}
}

func TestDropped(t *testing.T) {
	c := NewCompactor(countingEstimator{perLine: 10}, 80)

	if got := c.Dropped(turns(10), "answer"); got != 3 {
		t.Errorf("Dropped() = %d, want 3", got)
	}
	if got := c.Dropped(nil, "answer"); got != 0 {
		t.Errorf("Dropped(nil) = %d, want 0", got)
	}
}

func TestHeuristicEstimator(t *testing.T) {
	e := NewHeuristicEstimator()

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcdefgh", 2},
		{"a b c d e f", 6}, // word count dominates short words
	}
	for _, tt := range tests {
		if got := e.EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
