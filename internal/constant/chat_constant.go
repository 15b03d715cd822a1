package constant

import "time"

const (
	// Document chunking for embedding ingestion.
	DocumentChunkSize    = 1000
	DocumentChunkOverlap = 200

	// Embedding dimension must match the vector column width.
	EmbeddingDimension = 1536

	// Auth token lifetimes.
	AccessTokenTTL       = 24 * time.Hour
	VerificationTokenTTL = 48 * time.Hour
)
