package chromem

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imind-lab/mcp-rag/embedding"
	"github.com/imind-lab/mcp-rag/vector"
)

func TestChromemIndex(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	idx, err := NewChromemIndex(vector.Config{
		Backend:    vector.BackendChromem,
		Collection: "test",
	})
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	neighbors, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	assert.NoError(err)
	assert.Empty(neighbors)

	err = idx.Add(ctx, [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	})
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(3, idx.Len())

	neighbors, err = idx.Search(ctx, []float32{0, 0.9, 0.1}, 10)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Len(neighbors, 3)
	assert.Equal(1, neighbors[0].Position)
	assert.Equal(2, neighbors[1].Position)
	assert.LessOrEqual(neighbors[0].Distance, neighbors[1].Distance)

	err = idx.Add(ctx, [][]float32{{1, 0}})
	assert.ErrorIs(err, vector.ErrDimensionMismatch)
	assert.Equal(3, idx.Len())
}

func TestChromemIndexRanksByL2(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	idx, err := NewChromemIndex(vector.Config{})
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	// cosine similarity would put {1, 0} first
	err = idx.Add(ctx, [][]float32{
		{1, 0},
		{10, 1},
	})
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	neighbors, err := idx.Search(ctx, []float32{10, 0}, 2)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	if assert.Len(neighbors, 2) {
		assert.Equal(1, neighbors[0].Position)
		assert.InDelta(1, neighbors[0].Distance, 1e-5)
		assert.Equal(0, neighbors[1].Position)
		assert.InDelta(9, neighbors[1].Distance, 1e-5)
	}

	neighbors, err = idx.Search(ctx, []float32{10, 0}, 1)
	assert.NoError(err)
	if assert.Len(neighbors, 1) {
		assert.Equal(1, neighbors[0].Position)
	}
}

func TestChromemIndexTiesKeepInsertionOrder(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	idx, err := NewChromemIndex(vector.Config{})
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	err = idx.Add(ctx, [][]float32{
		{3, 3},
		{-1, 1},
		{1, 1},
		{-1, 1},
	})
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	neighbors, err := idx.Search(ctx, []float32{0, 1}, 4)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	positions := make([]int, len(neighbors))
	for i, n := range neighbors {
		positions[i] = n.Position
	}

	assert.Equal([]int{1, 2, 3, 0}, positions)
}

func TestFuncEmbedder(t *testing.T) {
	assert := assert.New(t)

	var calls []string
	embedder := FuncEmbedder(func(ctx context.Context, text string) ([]float32, error) {
		calls = append(calls, text)
		if text == "boom" {
			return nil, errors.New("boom")
		}

		return []float32{float32(len(text))}, nil
	})

	vectors, err := embedder.Embed(context.Background(), []string{"a", "bbb"})
	assert.NoError(err)
	assert.Equal([][]float32{{1}, {3}}, vectors)
	assert.Equal([]string{"a", "bbb"}, calls)

	_, err = embedder.Embed(context.Background(), []string{"boom"})
	assert.Error(err)
}

func TestNewEmbedderUnsupportedProvider(t *testing.T) {
	_, err := NewEmbedder(embedding.Config{Provider: embedding.ProviderOpenAI})
	assert.ErrorIs(t, err, embedding.ErrUnsupportedProvider)
}
