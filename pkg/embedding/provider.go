package embedding

// EmbeddingProvider turns text into a fixed-length vector via an external
// embedding service. taskType is a hint some providers use ("retrieval_query"
// vs "retrieval_document"); providers that don't support it ignore it.
type EmbeddingProvider interface {
	Generate(text string, taskType string) ([]float32, error)
}

// Task type hints understood by providers that distinguish query and
// document embeddings.
const (
	TaskTypeQuery    = "retrieval_query"
	TaskTypeDocument = "retrieval_document"
)
