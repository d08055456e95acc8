package rag

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Field names follow the layout LangChain's OpenSearchVectorSearch writes, so
// indexes built by either side can be queried by the other.
const (
	vectorField      = "vector_field"
	textField        = "text"
	publishDateField = "metadata.publish_date"
)

// OpenSearchConfig points at a k-NN enabled OpenSearch index.
type OpenSearchConfig struct {
	URL                string
	Index              string
	Username           string
	Password           string
	InsecureSkipVerify bool
	Engine             string
	Dimension          int
	Timeout            time.Duration
}

// OpenSearch is a vector store backed by the OpenSearch k-NN plugin.
type OpenSearch struct {
	baseURL    string
	index      string
	username   string
	password   string
	engine     string
	dimension  int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenSearch creates a store client.
func NewOpenSearch(cfg OpenSearchConfig, logger *zap.Logger) *OpenSearch {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Engine == "" {
		cfg.Engine = "faiss"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // self-signed dev clusters
	}
	return &OpenSearch{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		index:      cfg.Index,
		username:   cfg.Username,
		password:   cfg.Password,
		engine:     cfg.Engine,
		dimension:  cfg.Dimension,
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		logger:     logger,
	}
}

type storedDocument struct {
	Vector   []float32        `json:"vector_field,omitempty"`
	Text     string           `json:"text"`
	Metadata documentMetadata `json:"metadata"`
}

type documentMetadata struct {
	PublishDate string `json:"publish_date"`
	URL         string `json:"url"`
	StartIndex  int    `json:"start_index"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source storedDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs an approximate k-NN query filtered by publish date.
func (s *OpenSearch) Search(ctx context.Context, vector []float32, k int, dates DateRange) ([]Document, error) {
	knn := map[string]any{
		"vector": vector,
		"k":      k,
	}
	if r := dateRangeQuery(dates); r != nil {
		knn["filter"] = r
	}
	query := map[string]any{
		"size":    k,
		"_source": map[string]any{"excludes": []string{vectorField}},
		"query": map[string]any{
			"knn": map[string]any{vectorField: knn},
		},
	}

	var resp searchResponse
	if err := s.do(ctx, http.MethodPost, "/"+s.index+"/_search", "application/json", query, &resp); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		docs = append(docs, Document{
			Text:        h.Source.Text,
			PublishDate: h.Source.Metadata.PublishDate,
			URL:         h.Source.Metadata.URL,
			StartIndex:  h.Source.Metadata.StartIndex,
		})
	}
	return docs, nil
}

func dateRangeQuery(dates DateRange) map[string]any {
	bounds := map[string]string{}
	if dates.Gte != "" {
		bounds["gte"] = dates.Gte
	}
	if dates.Lte != "" {
		bounds["lte"] = dates.Lte
	}
	if len(bounds) == 0 {
		return nil
	}
	return map[string]any{
		"range": map[string]any{publishDateField: bounds},
	}
}

// EnsureIndex creates the index with a k-NN mapping unless it exists.
func (s *OpenSearch) EnsureIndex(ctx context.Context) error {
	req, err := s.newRequest(ctx, http.MethodHead, "/"+s.index, "", nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("opensearch: check index: %w", err)
	}
	_ = resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("opensearch: check index: status %d", resp.StatusCode)
	}

	mapping := map[string]any{
		"settings": map[string]any{
			"index": map[string]any{"knn": true},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				vectorField: map[string]any{
					"type":      "knn_vector",
					"dimension": s.dimension,
					"method": map[string]any{
						"name":       "hnsw",
						"space_type": "l2",
						"engine":     s.engine,
					},
				},
				textField: map[string]any{"type": "text"},
			},
		},
	}
	if err := s.do(ctx, http.MethodPut, "/"+s.index, "application/json", mapping, nil); err != nil {
		return err
	}
	s.logger.Info("created index", zap.String("index", s.index), zap.Int("dimension", s.dimension))
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error,omitempty"`
	} `json:"items"`
}

// Bulk indexes docs with their vectors in one _bulk request.
func (s *OpenSearch) Bulk(ctx context.Context, docs []Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("opensearch: %d documents but %d vectors", len(docs), len(vectors))
	}
	if len(docs) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for i, d := range docs {
		action := map[string]any{
			"index": map[string]string{"_index": s.index, "_id": uuid.NewString()},
		}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("opensearch: encode bulk action: %w", err)
		}
		src := storedDocument{
			Vector: vectors[i],
			Text:   d.Text,
			Metadata: documentMetadata{
				PublishDate: d.PublishDate,
				URL:         d.URL,
				StartIndex:  d.StartIndex,
			},
		}
		if err := enc.Encode(src); err != nil {
			return fmt.Errorf("opensearch: encode bulk document: %w", err)
		}
	}

	var resp bulkResponse
	if err := s.do(ctx, http.MethodPost, "/_bulk", "application/x-ndjson", body.Bytes(), &resp); err != nil {
		return err
	}
	if !resp.Errors {
		return nil
	}

	failed := 0
	var first string
	for _, item := range resp.Items {
		for _, r := range item {
			if r.Status >= 300 {
				failed++
				if first == "" {
					first = string(r.Error)
				}
			}
		}
	}
	return fmt.Errorf("opensearch: bulk: %d of %d documents failed, first error: %s", failed, len(docs), first)
}

func (s *OpenSearch) newRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("opensearch: create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}
	return req, nil
}

// do sends payload (raw bytes are sent as-is, anything else as JSON) and
// decodes the response into out when out is non-nil.
func (s *OpenSearch) do(ctx context.Context, method, path, contentType string, payload, out any) error {
	var raw []byte
	switch p := payload.(type) {
	case nil:
	case []byte:
		raw = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("opensearch: marshal request: %w", err)
		}
		raw = b
	}

	req, err := s.newRequest(ctx, method, path, contentType, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("opensearch: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("opensearch: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("opensearch: %s %s: status %d: %s", method, path, resp.StatusCode, truncate(body))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("opensearch: parse response: %w", err)
	}
	return nil
}
