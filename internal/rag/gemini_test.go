package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ":generateContent"):
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"*hi* there"}]}}]}`))
		case strings.Contains(r.URL.Path, "mbedContent"):
			var req struct {
				Requests []json.RawMessage `json:"requests"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			n := max(1, len(req.Requests))
			embeddings := make([]map[string][]float32, n)
			for i := range embeddings {
				embeddings[i] = map[string][]float32{"values": {float32(i), 1}}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), GeminiConfig{}, nil)
	assert.ErrorContains(t, err, "API key")
}

func TestGeminiClient_Complete(t *testing.T) {
	srv := newGeminiServer(t)
	c, err := NewGeminiClient(context.Background(), GeminiConfig{
		APIKey:  "k",
		BaseURL: srv.URL,
		Model:   "gemini-2.5-flash",
	}, nil)
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "*hi* there", got)
}

func TestGeminiClient_Embed(t *testing.T) {
	srv := newGeminiServer(t)
	c, err := NewGeminiClient(context.Background(), GeminiConfig{
		APIKey:  "k",
		BaseURL: srv.URL,
		Model:   "gemini-embedding-001",
	}, nil)
	require.NoError(t, err)

	vec, err := c.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, vec)

	vecs, err := c.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
}
