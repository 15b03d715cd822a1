package pipeline

import (
	"context"
	"errors"
	"log"

	"doc-chat-be/pkg/llm"
	"doc-chat-be/pkg/rag/prompt"
	"doc-chat-be/pkg/store"
)

// DefaultMaxAttempts bounds the truncation retry loop: up to 4 generation
// calls per request, each with one fewer fragment than the last.
const DefaultMaxAttempts = 4

// ErrInputTooLong means every attempt overflowed the model's context window,
// even after shrinking the retrieved context down to the retry bound.
var ErrInputTooLong = errors.New("input too long for the model context window")

// RetryState tracks progress through the bounded truncation loop.
type RetryState struct {
	Attempt int
	Max     int
}

// Result is the outcome of a successful controller run.
type Result struct {
	Answer    string
	Citations []string // unique source filenames, first-seen order
	Attempts  int      // generation calls made, 1-based
}

// Controller orchestrates prompt assembly and generation with adaptive
// truncation: a context-window overflow triggers a retry with the
// least-similar fragments dropped from the tail of the ranked set. Overflow
// is the only retried failure class; shrinking the input cannot fix an
// invalid request or an unreachable service, so those surface immediately.
type Controller struct {
	builder     *prompt.Builder
	llmProvider llm.LLMProvider
	maxAttempts int
	logger      *log.Logger
}

func NewController(builder *prompt.Builder, llmProvider llm.LLMProvider, maxAttempts int, logger *log.Logger) *Controller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Controller{
		builder:     builder,
		llmProvider: llmProvider,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Ask runs the truncation loop for one question. Attempt n uses the first
// len(fragments)-n fragments; the question itself never changes across
// attempts. The loop makes at most maxAttempts generation calls.
func (c *Controller) Ask(ctx context.Context, question string, fragments []store.Fragment, history []store.Turn) (*Result, error) {
	state := RetryState{Attempt: 0, Max: c.maxAttempts}

	for ; state.Attempt < state.Max; state.Attempt++ {
		kept := len(fragments) - state.Attempt
		if kept < 0 {
			kept = 0
		}
		if state.Attempt > 0 {
			c.logger.Printf("[TRUNCATE] attempt %d/%d: retrying with %d of %d fragments",
				state.Attempt+1, state.Max, kept, len(fragments))
		}

		promptCtx := c.builder.Assemble(question, fragments[:kept], history)

		answer, err := c.llmProvider.Generate(ctx, promptCtx.Render())
		if err == nil {
			return &Result{
				Answer:    answer,
				Citations: promptCtx.Citations,
				Attempts:  state.Attempt + 1,
			}, nil
		}

		if errors.Is(err, llm.ErrContextOverflow) {
			c.logger.Printf("[TRUNCATE] attempt %d/%d overflowed context window", state.Attempt+1, state.Max)
			continue
		}

		// UpstreamInvalid / UpstreamUnavailable are terminal on first occurrence
		c.logger.Printf("[ERROR] generation failed without overflow: %v", err)
		return nil, err
	}

	c.logger.Printf("[TRUNCATE] giving up after %d attempts", state.Max)
	return nil, ErrInputTooLong
}
