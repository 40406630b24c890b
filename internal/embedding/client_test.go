package embedding_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandermatch/wandermatch/internal/config"
	"github.com/wandermatch/wandermatch/internal/embedding"
)

// fakeEmbeddingServer serves an OpenAI-compatible embeddings endpoint
// returning the given vector.
func fakeEmbeddingServer(t *testing.T, vector []float32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"object": "list",
			"model":  "test-model",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": vector},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string, dim int) *config.Config {
	cfg := config.New()
	cfg.Embedding.BaseURL = baseURL + "/v1"
	cfg.Embedding.APIKey = "test-key"
	cfg.Embedding.Dimensions = dim
	cfg.Embedding.Timeout = time.Second
	return cfg
}

func TestEmbed(t *testing.T) {
	srv := fakeEmbeddingServer(t, []float32{0.1, 0.2, 0.3})
	client := embedding.New(testConfig(srv.URL, 3))

	vec, err := client.Embed(context.Background(), "Preferred experience types: Coffee")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, 3, client.Dimensions())
}

func TestEmbedWrongDimensionIsFailure(t *testing.T) {
	srv := fakeEmbeddingServer(t, []float32{0.1, 0.2})
	client := embedding.New(testConfig(srv.URL, 3))

	_, err := client.Embed(context.Background(), "some text")
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestEmbedEmptyText(t *testing.T) {
	srv := fakeEmbeddingServer(t, []float32{0.1})
	client := embedding.New(testConfig(srv.URL, 1))

	_, err := client.Embed(context.Background(), "")
	assert.Error(t, err)
}

func TestEmbedServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	client := embedding.New(testConfig(srv.URL, 3))

	_, err := client.Embed(context.Background(), "some text")
	assert.Error(t, err)
}

func TestFallback(t *testing.T) {
	vec := embedding.Fallback(4)
	assert.Equal(t, []float32{0.1, 0.1, 0.1, 0.1}, vec)
}
