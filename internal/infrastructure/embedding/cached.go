package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/redis"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

const cacheName = "embedding"

// CachedEmbedder serves repeated texts from the cache and embeds only the
// misses, in one call. Cache failures degrade to a plain embed.
type CachedEmbedder struct {
	next    Embedder
	cache   redis.Cache
	ttl     time.Duration
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewCachedEmbedder decorates next with cache.
func NewCachedEmbedder(next Embedder, cache redis.Cache, ttl time.Duration, log logging.Logger, metrics *prometheus.AppMetrics) *CachedEmbedder {
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &CachedEmbedder{next: next, cache: cache, ttl: ttl, logger: log, metrics: metrics}
}

func (c *CachedEmbedder) Model() string { return c.next.Model() }

// CacheKey is the cache key of text under model.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		var v []float32
		err := c.cache.Get(ctx, CacheKey(c.Model(), t), &v)
		if err == nil && len(v) > 0 {
			out[i] = v
			c.metrics.RecordCacheAccess(cacheName, true)
			continue
		}
		if err != nil && !errors.IsNotFound(err) {
			c.logger.Warn("embedding cache read failed", logging.Err(err))
		}
		c.metrics.RecordCacheAccess(cacheName, false)
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedder returned %d vectors for %d texts", len(vecs), len(missTexts)))
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		if err := c.cache.Set(ctx, CacheKey(c.Model(), missTexts[j]), vecs[j], c.ttl); err != nil {
			c.logger.Warn("embedding cache write failed", logging.Err(err))
		}
	}
	return out, nil
}

//Personal.AI order the ending
