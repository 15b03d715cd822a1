package prompt

import (
	"reflect"
	"strings"
	"testing"

	"doc-chat-be/pkg/store"
)

func TestUniqueFileNames(t *testing.T) {
	tests := []struct {
		name      string
		fragments []store.Fragment
		want      []string
	}{
		{
			name:      "empty",
			fragments: nil,
			want:      []string{},
		},
		{
			name: "duplicates collapse keeping first-seen order",
			fragments: []store.Fragment{
				{FileName: "b.pdf"},
				{FileName: "a.pdf"},
				{FileName: "b.pdf"},
				{FileName: "a.pdf"},
			},
			want: []string{"b.pdf", "a.pdf"},
		},
		{
			name: "uploads prefix stripped",
			fragments: []store.Fragment{
				{FileName: "uploads/report.txt"},
				{FileName: "report.txt"},
			},
			want: []string{"report.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueFileNames(tt.fragments)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UniqueFileNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSerializeHistory(t *testing.T) {
	tests := []struct {
		name    string
		history []store.Turn
		want    string
	}{
		{
			name:    "empty history is empty string",
			history: nil,
			want:    "",
		},
		{
			name: "turns joined newline in order",
			history: []store.Turn{
				{Speaker: store.SpeakerUser, Message: "hello"},
				{Speaker: store.SpeakerBot, Message: "hi there"},
			},
			want: "user: hello\nbot: hi there",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SerializeHistory(tt.history); got != tt.want {
				t.Errorf("SerializeHistory() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	b := NewBuilder("a friendly librarian", "casual")

	fragments := []store.Fragment{
		{FileName: "uploads/a.txt", Text: "fragment one"},
		{FileName: "b.txt", Text: "fragment two"},
	}
	history := []store.Turn{
		{Speaker: store.SpeakerUser, Message: "first question"},
		{Speaker: store.SpeakerBot, Message: "first answer"},
	}

	ctx := b.Assemble("second question", fragments, history)
	rendered := ctx.Render()

	for _, want := range []string{
		"a friendly librarian",
		"casual",
		"a.txt, b.txt",
		"fragment one",
		"fragment two",
		"user: first question",
		"bot: first answer",
		"Human: second question\nChatbot:",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
}

func TestRenderEmptyHistoryOmitsTranscript(t *testing.T) {
	b := NewBuilder("p", "t")
	ctx := b.Assemble("q", nil, nil)

	if ctx.Transcript != "" {
		t.Fatalf("Transcript = %q, want empty", ctx.Transcript)
	}
	if !strings.Contains(ctx.Render(), "Human: q\nChatbot:") {
		t.Error("Render() missing question footer")
	}
}

func TestAssembleCitationsFollowFragments(t *testing.T) {
	b := NewBuilder("p", "t")

	full := []store.Fragment{
		{FileName: "a.txt", Text: "one"},
		{FileName: "b.txt", Text: "two"},
		{FileName: "c.txt", Text: "three"},
	}

	// Dropping tail fragments must drop their citations too.
	truncated := b.Assemble("q", full[:1], nil)
	if !reflect.DeepEqual(truncated.Citations, []string{"a.txt"}) {
		t.Errorf("Citations = %v, want [a.txt]", truncated.Citations)
	}
}
