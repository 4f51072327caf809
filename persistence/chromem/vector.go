package chromem

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/viant/vec/search"

	"github.com/imind-lab/mcp-rag/vector"
)

const DefaultCollection string = "docs"

// NewChromemIndex returns an index backed by an in-memory chromem collection.
// chromem normalizes what it stores, so it only supplies candidates; the raw
// vectors are kept alongside and candidates are ranked by exact L2 distance.
func NewChromemIndex(cfg vector.Config) (vector.Index, error) {
	name := cfg.Collection
	if name == "" {
		name = DefaultCollection
	}

	db := chromem.NewDB()

	// embeddings are always supplied by the store, the collection never embeds
	c, err := db.GetOrCreateCollection(name, nil, noopEmbeddingFunc)
	if err != nil {
		return nil, err
	}

	return &collection{
		collection: c,
		dim:        cfg.Dimension,
	}, nil
}

func noopEmbeddingFunc(ctx context.Context, text string) ([]float32, error) {
	return nil, vector.ErrDimensionMismatch
}

type collection struct {
	collection *chromem.Collection
	vectors    []search.Float32s
	dim        int
	sync.RWMutex
}

func (c *collection) Add(ctx context.Context, vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	c.Lock()
	defer c.Unlock()

	dim := c.dim
	if dim == 0 {
		dim = len(vectors[0])
	}

	for _, v := range vectors {
		if len(v) != dim || dim == 0 {
			return vector.ErrDimensionMismatch
		}
	}

	offset := len(c.vectors)

	raw := make([]search.Float32s, len(vectors))
	docs := make([]chromem.Document, len(vectors))
	for i, v := range vectors {
		raw[i] = append(search.Float32s(nil), v...)

		position := strconv.Itoa(offset + i)

		docs[i] = chromem.Document{
			ID: position,
			Metadata: map[string]string{
				"position": position,
			},
			Embedding: append([]float32(nil), v...),
		}
	}

	if err := c.collection.AddDocuments(ctx, docs, 1); err != nil {
		return err
	}

	c.vectors = append(c.vectors, raw...)
	c.dim = dim
	return nil
}

func (c *collection) Search(ctx context.Context, query []float32, k int) ([]vector.Neighbor, error) {
	if k <= 0 {
		return nil, vector.ErrInvalidK
	}

	c.RLock()
	defer c.RUnlock()

	count := len(c.vectors)
	if count == 0 {
		return nil, nil
	}

	if len(query) != c.dim {
		return nil, vector.ErrDimensionMismatch
	}

	// every document is a candidate; cosine order differs from L2 order
	// for vectors that are not unit length
	results, err := c.collection.QueryEmbedding(ctx, query, count, nil, nil)
	if err != nil {
		return nil, err
	}

	q := search.Float32s(query)

	neighbors := make([]vector.Neighbor, 0, len(results))
	for _, result := range results {
		position, err := strconv.Atoi(result.ID)
		if err != nil || position < 0 || position >= count {
			continue
		}

		neighbors = append(neighbors, vector.Neighbor{
			Position: position,
			Distance: q.EuclideanDistance(c.vectors[position]),
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}

		return neighbors[i].Position < neighbors[j].Position
	})

	if k < len(neighbors) {
		neighbors = neighbors[:k]
	}

	return neighbors, nil
}

func (c *collection) Len() int {
	c.RLock()
	defer c.RUnlock()

	return len(c.vectors)
}
