package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "short text is a single chunk",
			text:       "hello world",
			chunkSize:  100,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "exact fit is a single chunk",
			text:       strings.Repeat("a", 100),
			chunkSize:  100,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "overlapping chunks",
			text:       strings.Repeat("a", 250),
			chunkSize:  100,
			overlap:    50,
			wantChunks: 4, // steps of 50: 0-100, 50-150, 100-200, 150-250
		},
		{
			name:       "overlap larger than chunk falls back to full steps",
			text:       strings.Repeat("a", 300),
			chunkSize:  100,
			overlap:    200,
			wantChunks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("got %d chunks, want %d", len(chunks), tt.wantChunks)
			}
			for i, chunk := range chunks {
				if len([]rune(chunk)) > tt.chunkSize {
					t.Errorf("chunk %d longer than chunkSize: %d", i, len(chunk))
				}
			}
		})
	}
}

func TestSplitTextPreservesContent(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("More text here. ", 50)

	chunks := SplitText(text, 100, 20)

	// First chunk starts the text, last chunk ends it.
	if !strings.HasPrefix(text, chunks[0][:20]) {
		t.Error("first chunk does not start the original text")
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("last chunk does not end the original text")
	}
}
