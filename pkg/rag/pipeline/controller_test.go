package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"doc-chat-be/pkg/llm"
	"doc-chat-be/pkg/rag/prompt"
	"doc-chat-be/pkg/store"
)

// fakeLLM fails the first overflowUntil calls with ErrContextOverflow, or
// always returns finalErr when set.
type fakeLLM struct {
	overflowUntil int
	finalErr      error
	answer        string
	prompts       []string
}

func (f *fakeLLM) Generate(ctx context.Context, p string, options ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, p)
	if f.finalErr != nil {
		return "", f.finalErr
	}
	if len(f.prompts) <= f.overflowUntil {
		return "", fmt.Errorf("%w: attempt %d", llm.ErrContextOverflow, len(f.prompts))
	}
	return f.answer, nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.Generate(ctx, "", options...)
}

func testFragments(n int) []store.Fragment {
	frags := make([]store.Fragment, n)
	for i := range frags {
		frags[i] = store.Fragment{
			FileName: fmt.Sprintf("doc%d.txt", i),
			Text:     fmt.Sprintf("FRAG%d", i),
			Rank:     i,
		}
	}
	return frags
}

func newTestController(provider llm.LLMProvider, maxAttempts int) *Controller {
	builder := prompt.NewBuilder("persona", "tone")
	return NewController(builder, provider, maxAttempts, log.New(io.Discard, "", 0))
}

func TestAskFirstAttemptSucceeds(t *testing.T) {
	fake := &fakeLLM{answer: "the answer"}
	c := newTestController(fake, DefaultMaxAttempts)

	res, err := c.Ask(context.Background(), "q", testFragments(5), nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if res.Answer != "the answer" {
		t.Errorf("Answer = %q", res.Answer)
	}
	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", res.Attempts)
	}
	if len(res.Citations) != 5 {
		t.Errorf("Citations = %v, want 5 entries", res.Citations)
	}
	// First attempt keeps every fragment.
	if !strings.Contains(fake.prompts[0], "FRAG4") {
		t.Error("first prompt missing last fragment")
	}
}

func TestAskRetriesDropTailFragments(t *testing.T) {
	fake := &fakeLLM{overflowUntil: 2, answer: "ok"}
	c := newTestController(fake, DefaultMaxAttempts)

	res, err := c.Ask(context.Background(), "q", testFragments(5), nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}

	// Attempt 1: all 5; attempt 2: 4; attempt 3: 3 fragments.
	wantDropped := [][]string{
		{},
		{"FRAG4"},
		{"FRAG4", "FRAG3"},
	}
	for i, dropped := range wantDropped {
		for _, frag := range dropped {
			if strings.Contains(fake.prompts[i], frag) {
				t.Errorf("attempt %d still contains %s", i+1, frag)
			}
		}
	}

	// Citations come from the surviving attempt's fragment set.
	want := []string{"doc0.txt", "doc1.txt", "doc2.txt"}
	if len(res.Citations) != len(want) {
		t.Fatalf("Citations = %v, want %v", res.Citations, want)
	}
	for i := range want {
		if res.Citations[i] != want[i] {
			t.Errorf("Citations[%d] = %q, want %q", i, res.Citations[i], want[i])
		}
	}
}

func TestAskGivesUpAfterMaxAttempts(t *testing.T) {
	fake := &fakeLLM{overflowUntil: 100}
	c := newTestController(fake, DefaultMaxAttempts)

	_, err := c.Ask(context.Background(), "q", testFragments(5), nil)
	if !errors.Is(err, ErrInputTooLong) {
		t.Fatalf("Ask() error = %v, want ErrInputTooLong", err)
	}
	if len(fake.prompts) != DefaultMaxAttempts {
		t.Errorf("generation calls = %d, want %d", len(fake.prompts), DefaultMaxAttempts)
	}
}

func TestAskTerminalErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"invalid request", llm.ErrUpstreamInvalid},
		{"unavailable", llm.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLLM{finalErr: tt.err}
			c := newTestController(fake, DefaultMaxAttempts)

			_, err := c.Ask(context.Background(), "q", testFragments(5), nil)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Ask() error = %v, want %v", err, tt.err)
			}
			if len(fake.prompts) != 1 {
				t.Errorf("generation calls = %d, want 1", len(fake.prompts))
			}
		})
	}
}

func TestAskFewerFragmentsThanAttempts(t *testing.T) {
	// With 2 fragments and 4 attempts, attempts 3 and 4 run on an empty
	// fragment set instead of slicing out of range.
	fake := &fakeLLM{overflowUntil: 3, answer: "ok"}
	c := newTestController(fake, DefaultMaxAttempts)

	res, err := c.Ask(context.Background(), "q", testFragments(2), nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if res.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", res.Attempts)
	}
	if len(res.Citations) != 0 {
		t.Errorf("Citations = %v, want empty", res.Citations)
	}
}

func TestAskQuestionNeverChanges(t *testing.T) {
	fake := &fakeLLM{overflowUntil: 2, answer: "ok"}
	c := newTestController(fake, DefaultMaxAttempts)

	if _, err := c.Ask(context.Background(), "the question", testFragments(3), nil); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	for i, p := range fake.prompts {
		if !strings.Contains(p, "Human: the question") {
			t.Errorf("attempt %d prompt lost the question", i+1)
		}
	}
}
