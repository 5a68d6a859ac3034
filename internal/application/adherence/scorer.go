// Package adherence measures how close a petition is to the topics an
// adjudicating body usually decides.
package adherence

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/embedding"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

const DefaultMaxDocumentRunes = 6000

// TopicSimilarity is the similarity of the document to one topic, in percent.
type TopicSimilarity struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// Match is the best topic for a document and its adherence score (0-100).
type Match struct {
	Topic        string            `json:"topic"`
	Score        float64           `json:"score"`
	Similarities []TopicSimilarity `json:"similarities"`
	Model        string            `json:"model"`
	Took         time.Duration     `json:"took_ns"`
}

// Scorer embeds a document and a set of topics in one batch and picks the
// topic with the highest cosine similarity.
type Scorer struct {
	embedder embedding.Embedder
	maxRunes int
}

func NewScorer(embedder embedding.Embedder, maxRunes int) *Scorer {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxDocumentRunes
	}
	return &Scorer{embedder: embedder, maxRunes: maxRunes}
}

// Score never special-cases short topic lists; the caller decides whether
// the history is large enough.
func (s *Scorer) Score(ctx context.Context, document string, topics []string) (*Match, error) {
	doc := judiciary.TruncateRunes(strings.TrimSpace(document), s.maxRunes)
	if doc == "" {
		return nil, errors.New(errors.ErrCodeEmptyDocument, "document has no text")
	}
	if len(topics) == 0 {
		return nil, errors.InvalidParam("at least one topic is required")
	}

	start := time.Now()
	texts := append([]string{doc}, topics...)
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "failed to embed document and topics")
	}
	if len(vectors) != len(texts) {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "embedding model returned an unexpected number of vectors")
	}

	m := &Match{Model: s.embedder.Model(), Similarities: make([]TopicSimilarity, len(topics))}
	best := math.Inf(-1)
	for i, topic := range topics {
		sim := Cosine(vectors[0], vectors[i+1])
		m.Similarities[i] = TopicSimilarity{Topic: topic, Score: percent(sim)}
		if sim > best {
			best = sim
			m.Topic = topic
		}
	}
	m.Score = percent(best)
	m.Took = time.Since(start)
	return m, nil
}

// Cosine returns the cosine similarity of a and b. Mismatched lengths or a
// zero vector yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// percent scales a similarity to 0-100 with one decimal.
func percent(sim float64) float64 {
	return math.Round(sim*1000) / 10
}

//Personal.AI order the ending
