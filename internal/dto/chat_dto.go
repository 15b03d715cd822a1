package dto

type ChatRequest struct {
	Question      string `json:"question" validate:"required,min=1"`
	DocumentScope string `json:"document_scope" validate:"omitempty"`
}

type ChatResponse struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
	Attempts  int      `json:"attempts"`
}

type HistoryTurnResponse struct {
	Speaker string `json:"speaker"`
	Message string `json:"message"`
}

// ChatPush is the frame pushed over a live websocket connection after a turn
// completes.
type ChatPush struct {
	Type      string   `json:"type"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
}
