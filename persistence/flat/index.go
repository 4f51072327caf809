package flat

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/vec/search"

	"github.com/imind-lab/mcp-rag/vector"
)

// NewIndex returns a brute-force index ranking by Euclidean distance.
// A zero dimension is fixed by the first non-empty Add.
func NewIndex(cfg vector.Config) vector.Index {
	return &index{
		dim: cfg.Dimension,
	}
}

type index struct {
	vecs []search.Float32s
	dim  int
	sync.RWMutex
}

func (idx *index) Add(ctx context.Context, vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	idx.Lock()
	defer idx.Unlock()

	dim := idx.dim
	if dim == 0 {
		dim = len(vectors[0])
	}

	for _, v := range vectors {
		if len(v) != dim || dim == 0 {
			return vector.ErrDimensionMismatch
		}
	}

	for _, v := range vectors {
		idx.vecs = append(idx.vecs, append(search.Float32s(nil), v...))
	}

	idx.dim = dim
	return nil
}

func (idx *index) Search(ctx context.Context, query []float32, k int) ([]vector.Neighbor, error) {
	if k <= 0 {
		return nil, vector.ErrInvalidK
	}

	idx.RLock()
	defer idx.RUnlock()

	if len(idx.vecs) == 0 {
		return nil, nil
	}

	if len(query) != idx.dim {
		return nil, vector.ErrDimensionMismatch
	}

	q := search.Float32s(query)

	neighbors := make([]vector.Neighbor, len(idx.vecs))
	for i, v := range idx.vecs {
		neighbors[i] = vector.Neighbor{
			Position: i,
			Distance: q.EuclideanDistance(v),
		}
	}

	// stable sort keeps insertion order for equal distances
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	if k > len(neighbors) {
		k = len(neighbors)
	}

	return neighbors[:k], nil
}

func (idx *index) Len() int {
	idx.RLock()
	defer idx.RUnlock()

	return len(idx.vecs)
}
