package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"doc-chat-be/pkg/llm"
)

func newServerProvider(t *testing.T, status int, body string) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewOpenAIProvider(srv.URL, "test-key", "test-model")
}

func TestGenerateSuccess(t *testing.T) {
	p := newServerProvider(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`)

	got, err := p.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("Generate() = %q, want %q", got, "hello")
	}
}

func TestGenerateErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "server error is unavailable",
			status:  http.StatusInternalServerError,
			body:    `{"error":"boom"}`,
			wantErr: llm.ErrUpstreamUnavailable,
		},
		{
			name:    "bad gateway is unavailable",
			status:  http.StatusBadGateway,
			body:    "",
			wantErr: llm.ErrUpstreamUnavailable,
		},
		{
			name:    "overflow message is context overflow",
			status:  http.StatusBadRequest,
			body:    `{"error":{"message":"This model's maximum context length is 4097 tokens","code":"context_length_exceeded"}}`,
			wantErr: llm.ErrContextOverflow,
		},
		{
			name:    "plain bad request is invalid",
			status:  http.StatusBadRequest,
			body:    `{"error":{"message":"invalid model"}}`,
			wantErr: llm.ErrUpstreamInvalid,
		},
		{
			name:    "unauthorized is invalid",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"bad key"}}`,
			wantErr: llm.ErrUpstreamInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newServerProvider(t, tt.status, tt.body)
			_, err := p.Generate(context.Background(), "hi")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateTransportErrorIsUnavailable(t *testing.T) {
	p := NewOpenAIProvider("http://127.0.0.1:1", "key", "model")

	_, err := p.Generate(context.Background(), "hi")
	if !errors.Is(err, llm.ErrUpstreamUnavailable) {
		t.Errorf("Generate() error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestGenerateEmptyChoicesIsInvalid(t *testing.T) {
	p := newServerProvider(t, http.StatusOK, `{"choices":[]}`)

	_, err := p.Generate(context.Background(), "hi")
	if !errors.Is(err, llm.ErrUpstreamInvalid) {
		t.Errorf("Generate() error = %v, want ErrUpstreamInvalid", err)
	}
}
