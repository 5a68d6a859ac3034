package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

func TestNewGeminiEmbedder_RequiresKey(t *testing.T) {
	_, err := NewGeminiEmbedder(context.Background(), GeminiConfig{}, logging.NewNopLogger(), nil)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestEmbed_ChunksLargeInputs(t *testing.T) {
	var sizes []int
	g := newEmbedder(func(_ context.Context, texts []string) ([][]float32, error) {
		sizes = append(sizes, len(texts))
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{float32(len(texts[i]))}
		}
		return out, nil
	}, DefaultModel, 0, logging.NewNopLogger(), nil)

	texts := make([]string, 230)
	for i := range texts {
		texts[i] = fmt.Sprintf("tema %d", i)
	}

	got, err := g.Embed(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 100, 30}, sizes)
	require.Len(t, got, 230)
	assert.Equal(t, float32(len("tema 229")), got[229][0])
}

func TestEmbed_EmptyInput(t *testing.T) {
	g := newEmbedder(func(context.Context, []string) ([][]float32, error) {
		t.Fatal("no request expected")
		return nil, nil
	}, DefaultModel, 0, logging.NewNopLogger(), nil)

	got, err := g.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbed_UpstreamError(t *testing.T) {
	g := newEmbedder(func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("quota exceeded")
	}, DefaultModel, 0, logging.NewNopLogger(), nil)

	_, err := g.Embed(context.Background(), []string{"a"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeEmbeddingFailed))
}

func TestEmbed_CountMismatch(t *testing.T) {
	g := newEmbedder(func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}, DefaultModel, 0, logging.NewNopLogger(), nil)

	_, err := g.Embed(context.Background(), []string{"a", "b"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeEmbeddingFailed))
}

func TestGeminiEmbedder_CloseWithoutClient(t *testing.T) {
	g := newEmbedder(nil, DefaultModel, 0, logging.NewNopLogger(), nil)
	assert.NoError(t, g.Close())
	assert.Equal(t, DefaultModel, g.Model())
}

//Personal.AI order the ending
