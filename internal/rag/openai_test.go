package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mimo-v2-flash", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "prompt", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  **answer**\n"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL + "/v1/", APIKey: "key", Model: "mimo-v2-flash"}, nil)
	got, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "**answer**", got)
}

func TestOpenAIClient_Embeddings(t *testing.T) {
	var inputs [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		inputs = append(inputs, req.Input)

		// Out of order on purpose.
		if len(req.Input) == 2 {
			_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[2]},{"index":0,"embedding":[1]}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.5,0.5]}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{
		BaseURL:        srv.URL,
		Model:          "nomic",
		QueryPrefix:    "search_query: ",
		DocumentPrefix: "search_document: ",
	}, nil)

	vec, err := c.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)

	vecs, err := c.EmbedDocuments(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}}, vecs)

	assert.Equal(t, [][]string{{"search_query: q"}, {"search_document: a", "search_document: b"}}, inputs)
}

func TestOpenAIClient_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, MaxRetries: 2}, nil)
	c.backoff = time.Millisecond

	got, err := c.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAIClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, MaxRetries: 3}, nil)
	c.backoff = time.Millisecond

	_, err := c.Complete(context.Background(), "p")
	assert.ErrorContains(t, err, "status 401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL}, nil).Complete(context.Background(), "p")
	assert.ErrorContains(t, err, "no completion")
}
