package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Generation failure taxonomy. Providers wrap their transport/status errors
// with exactly one of these sentinels so the pipeline can decide whether a
// retry with a smaller prompt makes sense.
var (
	// ErrContextOverflow means the combined prompt exceeded the model's
	// context window. Retrying with less context can succeed.
	ErrContextOverflow = errors.New("prompt exceeds model context window")

	// ErrUpstreamInvalid means the completion service rejected the request
	// for a reason unrelated to prompt size. Retrying will not help.
	ErrUpstreamInvalid = errors.New("completion service rejected the request")

	// ErrUpstreamUnavailable means the completion service could not be
	// reached or failed internally.
	ErrUpstreamUnavailable = errors.New("completion service unavailable")
)

// ClassifyStatus maps an HTTP status and response body from an
// OpenAI-compatible completion endpoint onto the error taxonomy.
func ClassifyStatus(status int, body string) error {
	switch {
	case status >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, status, body)
	case status >= 400:
		if isContextOverflowBody(body) {
			return fmt.Errorf("%w: status %d", ErrContextOverflow, status)
		}
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamInvalid, status, body)
	default:
		return nil
	}
}

func isContextOverflowBody(body string) bool {
	// OpenAI-compatible services report overflow either with the
	// "context_length_exceeded" code or a "maximum context length" message.
	lower := strings.ToLower(body)
	return strings.Contains(lower, "maximum context length") ||
		strings.Contains(lower, "context_length_exceeded") ||
		strings.Contains(lower, "context window")
}
