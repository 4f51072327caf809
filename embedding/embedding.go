package embedding

import (
	"context"
	"errors"
	"time"
)

var ErrUnsupportedProvider = errors.New("unsupported embedding provider")

type Provider string

const (
	ProviderOpenAI       Provider = "openai"
	ProviderOllama       Provider = "ollama"
	ProviderOpenAICompat Provider = "openai-compat"
)

type Config struct {
	Provider Provider      `yaml:"provider"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"baseURL"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Embedder maps texts to fixed-dimension vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type EmbedderFunc func(ctx context.Context, texts []string) ([][]float32, error)

func (f EmbedderFunc) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}
