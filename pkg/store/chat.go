package store

// Speaker labels for conversation turns. These values are persisted verbatim
// in the history store, so they must stay stable.
const (
	SpeakerUser = "user"
	SpeakerBot  = "bot"
)

// Turn is one message (user or bot) in a conversation history.
type Turn struct {
	Speaker string `json:"speaker"`
	Message string `json:"message"`
}

// Fragment is a retrieved snippet of source-document text with provenance.
// Rank is the 0-based position in the similarity-ordered result set.
type Fragment struct {
	DocumentID string  `json:"document_id"`
	FileName   string  `json:"file_name"`
	Text       string  `json:"text"`
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
}
