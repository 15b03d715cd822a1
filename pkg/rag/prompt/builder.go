package prompt

import (
	"strings"

	"doc-chat-be/pkg/store"
)

// Context is the fully assembled input for one generation attempt. It is
// built fresh per attempt (retries shrink Fragments) and discarded after use.
type Context struct {
	Persona    string
	Tone       string
	Fragments  []store.Fragment
	Citations  []string // unique source filenames, first-seen order
	Transcript string   // serialized running history
	Question   string
}

// Builder assembles generation prompts from persona/tone configuration,
// retrieved fragments and the running conversation. Pure; safe for
// concurrent use.
type Builder struct {
	persona string
	tone    string
}

func NewBuilder(persona, tone string) *Builder {
	return &Builder{
		persona: persona,
		tone:    tone,
	}
}

// Assemble builds the prompt context for one attempt. It never fails: zero
// fragments and an empty history are both valid inputs.
func (b *Builder) Assemble(question string, fragments []store.Fragment, history []store.Turn) *Context {
	return &Context{
		Persona:    b.persona,
		Tone:       b.tone,
		Fragments:  fragments,
		Citations:  UniqueFileNames(fragments),
		Transcript: SerializeHistory(history),
		Question:   question,
	}
}

// Render flattens the context into the completion prompt.
func (c *Context) Render() string {
	var prompt strings.Builder

	prompt.WriteString("You are a chatbot who acts like ")
	prompt.WriteString(c.Persona)
	prompt.WriteString(", having a conversation with a student.\n\n")

	prompt.WriteString("Given the following extracted parts of a long document, answer the question in the tone ")
	prompt.WriteString(c.Tone)
	prompt.WriteString(".\n")
	prompt.WriteString("If you don't know the answer, just say that you don't know. Don't try to make up an answer.\n")
	prompt.WriteString("ALWAYS return a \"FILENAMES\" part only at the end of your answer with: ")
	prompt.WriteString(strings.Join(c.Citations, ", "))
	prompt.WriteString("\n\n")

	prompt.WriteString("<extracted_parts>\n")
	for _, f := range c.Fragments {
		prompt.WriteString(f.Text)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</extracted_parts>\n\n")

	if c.Transcript != "" {
		prompt.WriteString(c.Transcript)
		prompt.WriteString("\n")
	}
	prompt.WriteString("Human: ")
	prompt.WriteString(c.Question)
	prompt.WriteString("\nChatbot:")

	return prompt.String()
}

// UniqueFileNames de-duplicates source filenames across fragments, preserving
// first-seen order. Any leading "uploads/" path segment is stripped so
// citations show the name the user uploaded.
func UniqueFileNames(fragments []store.Fragment) []string {
	seen := make(map[string]struct{}, len(fragments))
	names := make([]string, 0, len(fragments))

	for _, f := range fragments {
		name := strings.TrimPrefix(f.FileName, "uploads/")
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

// SerializeHistory flattens a conversation into "speaker: message" lines.
// An empty history serializes to an empty string.
func SerializeHistory(history []store.Turn) string {
	if len(history) == 0 {
		return ""
	}

	lines := make([]string, len(history))
	for i, turn := range history {
		lines[i] = turn.Speaker + ": " + turn.Message
	}
	return strings.Join(lines, "\n")
}
