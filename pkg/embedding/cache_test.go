package embedding

import (
	"errors"
	"testing"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Generate(text string, taskType string) ([]float32, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []float32{float32(len(text))}, nil
}

func TestCachedProviderMemoizes(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCachedProvider(inner)

	first, err := cached.Generate("hello", TaskTypeQuery)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := cached.Generate("hello", TaskTypeQuery)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if first[0] != second[0] {
		t.Error("cached vector differs from original")
	}
}

func TestCachedProviderKeysOnTaskType(t *testing.T) {
	inner := &countingProvider{}
	cached := NewCachedProvider(inner)

	cached.Generate("hello", TaskTypeQuery)
	cached.Generate("hello", TaskTypeDocument)

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (task types must not share entries)", inner.calls)
	}
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: errors.New("upstream down")}
	cached := NewCachedProvider(inner)

	if _, err := cached.Generate("hello", TaskTypeQuery); err == nil {
		t.Fatal("expected error")
	}

	inner.err = nil
	if _, err := cached.Generate("hello", TaskTypeQuery); err != nil {
		t.Fatalf("Generate() after recovery error = %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}
