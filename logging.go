package mcprag

import (
	"context"

	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "mcprag"),
	)

	return func(next Service) Service {
		log.Info("service initialized")

		return &loggingMiddleware{
			log:  log,
			next: next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) IndexDocs(ctx context.Context, docs []string) (string, error) {
	log := mw.log.With(
		zap.String("action", "index_docs"),
		zap.Int("docs", len(docs)),
	)

	result, err := mw.next.IndexDocs(ctx, docs)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("docs indexed", zap.String("result", result))
	return result, nil
}

func (mw *loggingMiddleware) RetrieveDocs(ctx context.Context, query string, topK ...int) (string, error) {
	var k int
	if len(topK) > 0 {
		k = topK[0]
	}

	log := mw.log.With(
		zap.String("action", "retrieve_docs"),
		zap.String("query", query),
	)

	if k != 0 {
		log = log.With(
			zap.Int("top_k", k),
		)
	}

	result, err := mw.next.RetrieveDocs(ctx, query, topK...)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("docs retrieved", zap.Bool("empty", result == NoResults))
	return result, nil
}
