package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imind-lab/mcp-rag/embedding"
)

func TestEmbedderPreservesInputOrder(t *testing.T) {
	assert := assert.New(t)

	var body struct {
		Model          string   `json:"model"`
		Input          []string `json:"input"`
		EncodingFormat string   `json:"encoding_format"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}

		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
		  "object": "list",
		  "model": "text-embedding-test",
		  "data": [
		    {"object": "embedding", "index": 1, "embedding": [0, 1]},
		    {"object": "embedding", "index": 0, "embedding": [1, 0]}
		  ],
		  "usage": {"prompt_tokens": 2, "total_tokens": 2}
		}`))
	}))
	defer srv.Close()

	embedder := NewEmbedder(embedding.Config{
		Provider: embedding.ProviderOpenAI,
		Model:    "text-embedding-test",
		BaseURL:  srv.URL + "/v1/",
		APIKey:   "test",
	})

	vectors, err := embedder.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal([][]float32{{1, 0}, {0, 1}}, vectors)
	assert.Equal("text-embedding-test", body.Model)
	assert.Equal([]string{"first", "second"}, body.Input)
	assert.Equal("float", body.EncodingFormat)
}

func TestEmbedderPropagatesFailure(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "model overloaded", "type": "server_error"}}`))
	}))
	defer srv.Close()

	embedder := NewEmbedder(embedding.Config{
		Model:   "text-embedding-test",
		BaseURL: srv.URL + "/v1/",
		APIKey:  "test",
	})

	_, err := embedder.Embed(context.Background(), []string{"text"})
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "no retries")
}
