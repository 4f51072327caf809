package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/imind-lab/mcp-rag/embedding"
)

var ErrInvalidEmbeddingIndex = errors.New("invalid embedding index")

// ClientOptions translates the shared endpoint settings into openai-go options.
// Retries are disabled, every fault is reported to the caller as is.
func ClientOptions(baseURL, apiKey string, cfg ...option.RequestOption) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
	}

	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return append(opts, cfg...)
}

func NewEmbedder(cfg embedding.Config) embedding.Embedder {
	var opts []option.RequestOption
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openai.NewClient(ClientOptions(cfg.BaseURL, cfg.APIKey, opts...)...)

	return &embedder{
		client: client,
		model:  cfg.Model,
	}
}

type embedder struct {
	client openai.Client
	model  string
}

func (e *embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(resp.Data))
	for _, data := range resp.Data {
		i := int(data.Index)
		if i < 0 || i >= len(vectors) || vectors[i] != nil {
			return nil, ErrInvalidEmbeddingIndex
		}

		v := make([]float32, len(data.Embedding))
		for j, f := range data.Embedding {
			v[j] = float32(f)
		}

		vectors[i] = v
	}

	return vectors, nil
}
