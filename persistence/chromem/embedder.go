package chromem

import (
	"context"

	"github.com/philippgille/chromem-go"

	"github.com/imind-lab/mcp-rag/embedding"
)

// NewEmbedder adapts chromem's single-text embedding functions to a batch
// embedder. Texts are embedded one request at a time, in input order.
func NewEmbedder(cfg embedding.Config) (embedding.Embedder, error) {
	var fn chromem.EmbeddingFunc

	switch cfg.Provider {
	case embedding.ProviderOllama:
		fn = chromem.NewEmbeddingFuncOllama(cfg.Model, cfg.BaseURL)

	case embedding.ProviderOpenAICompat:
		fn = chromem.NewEmbeddingFuncOpenAICompat(cfg.BaseURL, cfg.APIKey, cfg.Model, nil)

	default:
		return nil, embedding.ErrUnsupportedProvider
	}

	return FuncEmbedder(fn), nil
}

func FuncEmbedder(fn chromem.EmbeddingFunc) embedding.Embedder {
	return embedding.EmbedderFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			v, err := fn(ctx, text)
			if err != nil {
				return nil, err
			}

			vectors[i] = v
		}

		return vectors, nil
	})
}
