package vector

import (
	"context"
	"errors"
)

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrInvalidK          = errors.New("k must be positive")
)

type Backend string

const (
	BackendFlat    Backend = "flat"
	BackendChromem Backend = "chromem"
)

type Config struct {
	Backend    Backend `yaml:"backend"`
	Dimension  int     `yaml:"dimension"`
	Collection string  `yaml:"collection"`
}

// Index is an append-only collection of vectors addressed by insertion position.
type Index interface {
	// Add appends vectors in order. Either all vectors are appended or none.
	Add(ctx context.Context, vectors [][]float32) error

	// Search returns up to k neighbors ordered by ascending L2 distance.
	Search(ctx context.Context, query []float32, k int) ([]Neighbor, error)

	// Len returns the number of stored vectors.
	Len() int
}

type Neighbor struct {
	Position int     `json:"position"`
	Distance float32 `json:"distance"`
}
