package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoizes embeddings by text so repeated questions don't pay
// for a second round trip to the embedding service. Entries expire so the
// cache cannot grow without bound.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *cache.Cache
}

func NewCachedProvider(inner EmbeddingProvider) EmbeddingProvider {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	return &CachedProvider{
		inner: inner,
		cache: cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (p *CachedProvider) Generate(text string, taskType string) ([]float32, error) {
	key := cacheKey(text, taskType)
	if x, found := p.cache.Get(key); found {
		return x.([]float32), nil
	}

	vec, err := p.inner.Generate(text, taskType)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, vec, cache.DefaultExpiration)
	return vec, nil
}

func cacheKey(text, taskType string) string {
	sum := sha256.Sum256([]byte(taskType + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
