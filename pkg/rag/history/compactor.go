package history

import (
	"doc-chat-be/pkg/rag/prompt"
	"doc-chat-be/pkg/store"
)

// DefaultTokenBudget is the retained-history ceiling applied after every
// completed turn.
const DefaultTokenBudget = 2500

// Compactor trims conversation history, oldest turn first, until the
// estimated token cost of (history + new answer) fits the budget. The answer
// itself is never shortened, only the retained history shrinks.
type Compactor struct {
	estimator TokenEstimator
	budget    int
}

func NewCompactor(estimator TokenEstimator, budget int) *Compactor {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	return &Compactor{
		estimator: estimator,
		budget:    budget,
	}
}

// Compact returns the retained suffix of history. History length strictly
// decreases each iteration, so the loop terminates even when a single
// remaining turn (or the answer alone) exceeds the budget, worst case at an
// empty history.
func (c *Compactor) Compact(history []store.Turn, newAnswer string) []store.Turn {
	retained := history

	for len(retained) > 0 && c.estimate(retained, newAnswer) > c.budget {
		retained = retained[1:]
	}

	return retained
}

// Dropped reports how many of the oldest turns Compact would discard.
func (c *Compactor) Dropped(history []store.Turn, newAnswer string) int {
	return len(history) - len(c.Compact(history, newAnswer))
}

func (c *Compactor) estimate(history []store.Turn, newAnswer string) int {
	transcript := prompt.SerializeHistory(history)
	return c.estimator.EstimateTokens(transcript + "\n" + store.SpeakerBot + ": " + newAnswer)
}
