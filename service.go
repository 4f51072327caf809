package mcprag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Service exposes the document store as the two remote tool operations.
type Service interface {

	// IndexDocs embeds and appends docs, returning a summary of the counts.
	IndexDocs(ctx context.Context, docs []string) (string, error)

	// RetrieveDocs returns the documents nearest to query, rendered as
	// "[position] text" entries separated by blank lines.
	RetrieveDocs(ctx context.Context, query string, topK ...int) (string, error)
}

type ServiceMiddleware func(Service) Service

func NewService(store *Store) Service {
	log := zap.L().With(
		zap.String("service", "mcprag"),
	)

	return &service{
		store: store,
		log:   log,
	}
}

type service struct {
	store *Store
	log   *zap.Logger
}

func (svc *service) IndexDocs(ctx context.Context, docs []string) (string, error) {
	total, err := svc.store.Add(ctx, docs)
	if err != nil {
		return "", err
	}

	svc.log.Debug("documents indexed",
		zap.Int("count", len(docs)),
		zap.Int("total", total),
	)

	return fmt.Sprintf("已索引 %d 篇文档，总文档数：%d", len(docs), total), nil
}

func (svc *service) RetrieveDocs(ctx context.Context, query string, topK ...int) (string, error) {
	k := DefaultTopK
	if len(topK) > 0 && topK[0] != 0 {
		k = topK[0]
	}

	if k < 1 {
		return "", ErrInvalidTopK
	}

	results, err := svc.store.Search(ctx, query, k)
	if err != nil {
		return "", err
	}

	svc.log.Debug("documents retrieved",
		zap.Int("k", k),
		zap.Int("count", len(results)),
	)

	if len(results) == 0 {
		return NoResults, nil
	}

	entries := make([]string, len(results))
	for i, result := range results {
		entries[i] = fmt.Sprintf("[%d] %s", result.Position, result.Content)
	}

	return strings.Join(entries, "\n\n"), nil
}
