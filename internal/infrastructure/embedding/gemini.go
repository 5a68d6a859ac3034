// Package embedding turns text into dense vectors for adherence scoring.
package embedding

import (
	"context"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

const (
	DefaultModel = "text-embedding-004"
	// maxBatch is the per-request limit of batchEmbedContents.
	maxBatch       = 100
	defaultTimeout = 30 * time.Second
)

// Embedder maps each input text to one vector, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// GeminiConfig configures the Gemini embedding model.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type batchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// GeminiEmbedder embeds text with the Gemini API.
type GeminiEmbedder struct {
	client  *genai.Client
	batch   batchFunc
	model   string
	timeout time.Duration
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewGeminiEmbedder connects a Gemini client for cfg.Model.
func NewGeminiEmbedder(ctx context.Context, cfg GeminiConfig, log logging.Logger, metrics *prometheus.AppMetrics) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.InvalidParam("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "failed to create gemini client")
	}
	model := client.EmbeddingModel(cfg.Model)
	model.TaskType = genai.TaskTypeSemanticSimilarity

	g := newEmbedder(func(ctx context.Context, texts []string) ([][]float32, error) {
		b := model.NewBatch()
		for _, t := range texts {
			b.AddContent(genai.Text(t))
		}
		res, err := model.BatchEmbedContents(ctx, b)
		if err != nil {
			return nil, err
		}
		out := make([][]float32, 0, len(res.Embeddings))
		for _, e := range res.Embeddings {
			out = append(out, e.Values)
		}
		return out, nil
	}, cfg.Model, cfg.Timeout, log, metrics)
	g.client = client
	return g, nil
}

func newEmbedder(batch batchFunc, model string, timeout time.Duration, log logging.Logger, metrics *prometheus.AppMetrics) *GeminiEmbedder {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &GeminiEmbedder{batch: batch, model: model, timeout: timeout, logger: log, metrics: metrics}
}

func (g *GeminiEmbedder) Model() string { return g.model }

// Embed sends texts in chunks of at most maxBatch.
func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := start + maxBatch
		if end > len(texts) {
			end = len(texts)
		}
		chunk := texts[start:end]

		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		timer := prometheus.NewTimer(g.metrics.EmbeddingDuration.WithLabelValues(g.model))
		vecs, err := g.batch(cctx, chunk)
		took := timer.ObserveDuration()
		cancel()

		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "embedding request failed")
		}
		if len(vecs) != len(chunk) {
			return nil, errors.New(errors.ErrCodeEmbeddingFailed, "embedding count does not match input count")
		}
		g.logger.Debug("embedded batch", logging.Int("size", len(chunk)), logging.Duration("took", took))
		out = append(out, vecs...)
	}
	return out, nil
}

// Close releases the underlying client.
func (g *GeminiEmbedder) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

//Personal.AI order the ending
