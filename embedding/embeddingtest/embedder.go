// Package embeddingtest provides a deterministic embedder for tests.
package embeddingtest

import (
	"context"
	"math"
	"sync"
	"unicode"
)

const DefaultDimension int = 256

// RuneEmbedder counts letters and digits into rune buckets and normalizes the
// result. Texts sharing characters end up close under L2 distance.
type RuneEmbedder struct {
	Dimension int
	Err       error

	mu    sync.Mutex
	calls [][]string
}

func NewRuneEmbedder() *RuneEmbedder {
	return &RuneEmbedder{
		Dimension: DefaultDimension,
	}
}

func (e *RuneEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls = append(e.calls, append([]string(nil), texts...))
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vector(text)
	}

	return vectors, nil
}

// Calls returns the batches received so far.
func (e *RuneEmbedder) Calls() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([][]string(nil), e.calls...)
}

func (e *RuneEmbedder) vector(text string) []float32 {
	dim := e.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}

	v := make([]float32, dim)
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}

		v[int(r)%dim]++
	}

	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}

	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}

	return v
}
