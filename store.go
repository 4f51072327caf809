package mcprag

import (
	"context"
	"fmt"
	"sync"

	"github.com/imind-lab/mcp-rag/embedding"
	"github.com/imind-lab/mcp-rag/vector"
)

// Result is a retrieved document and its distance to the query.
type Result struct {
	Position int     `json:"position"`
	Content  string  `json:"content"`
	Distance float32 `json:"distance"`
}

// Store is an append-only list of documents co-indexed with their embeddings.
// A document's position is its insertion order.
type Store struct {
	docs     []string
	index    vector.Index
	embedder embedding.Embedder

	sync.RWMutex
}

func NewStore(index vector.Index, embedder embedding.Embedder) *Store {
	return &Store{
		docs:     make([]string, 0),
		index:    index,
		embedder: embedder,
	}
}

// Add embeds docs in a single batch and appends them in order.
// It returns the number of documents stored afterwards.
func (s *Store) Add(ctx context.Context, docs []string) (int, error) {
	if len(docs) == 0 {
		return 0, ErrEmptyDocuments
	}

	vectors, err := s.embedder.Embed(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("embed documents: %w", err)
	}

	if len(vectors) != len(docs) {
		return 0, ErrEmbeddingCount
	}

	s.Lock()
	defer s.Unlock()

	if err := s.index.Add(ctx, vectors); err != nil {
		return 0, fmt.Errorf("index documents: %w", err)
	}

	s.docs = append(s.docs, docs...)

	return len(s.docs), nil
}

// Search returns up to k documents nearest to query. An empty store returns
// no results without embedding the query.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k < 1 {
		return nil, ErrInvalidTopK
	}

	if s.Len() == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if len(vectors) != 1 {
		return nil, ErrEmbeddingCount
	}

	s.RLock()
	defer s.RUnlock()

	neighbors, err := s.index.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]Result, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Position < 0 || n.Position >= len(s.docs) {
			continue
		}

		results = append(results, Result{
			Position: n.Position,
			Content:  s.docs[n.Position],
			Distance: n.Distance,
		})
	}

	return results, nil
}

func (s *Store) Len() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.docs)
}

func (s *Store) Document(position int) (string, bool) {
	s.RLock()
	defer s.RUnlock()

	if position < 0 || position >= len(s.docs) {
		return "", false
	}

	return s.docs[position], true
}
