package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elimu-labs/mwalimu"
)

// PineconeRetriever implements Retriever against the Pinecone query REST
// API. Query text is embedded through the configured Embedder, then matched
// against the index with a metadata filter.
type PineconeRetriever struct {
	apiKey     string
	indexHost  string
	namespace  string
	httpClient *http.Client
	embedder   Embedder
}

// PineconeConfig holds configuration for the Pinecone retriever.
type PineconeConfig struct {
	APIKey     string        // Pinecone API key
	IndexHost  string        // Index host URL (e.g., "https://idx-abc123.svc.pinecone.io")
	Namespace  string        // Document partition to query ("" = default namespace)
	Timeout    time.Duration // HTTP timeout (default: 30s)
	HTTPClient *http.Client  // Custom client (optional, overrides Timeout)
}

// NewPineconeRetriever creates a Pinecone retriever backed by the given
// embedder.
func NewPineconeRetriever(cfg PineconeConfig, embedder Embedder) *PineconeRetriever {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &PineconeRetriever{
		apiKey:     cfg.APIKey,
		indexHost:  cfg.IndexHost,
		namespace:  cfg.Namespace,
		httpClient: client,
		embedder:   embedder,
	}
}

// pineconeQuery is the /query request body.
type pineconeQuery struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Namespace       string         `json:"namespace,omitempty"`
	Filter          map[string]any `json:"filter,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata"`
}

// pineconeResponse is the subset of the /query response the retriever
// consumes.
type pineconeResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Search embeds the query and runs a filtered similarity search.
func (r *PineconeRetriever) Search(ctx context.Context, query string, filter Filter, topK int) ([]Passage, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	body := pineconeQuery{
		Vector:          vector,
		TopK:            topK,
		Namespace:       r.namespace,
		Filter:          buildFilter(filter),
		IncludeMetadata: true,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &mwalimu.UpstreamError{
			Service: "pinecone",
			Message: "encode query",
			Cause:   err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.indexHost+"/query", bytes.NewReader(payload))
	if err != nil {
		return nil, &mwalimu.UpstreamError{
			Service: "pinecone",
			Message: "build request",
			Cause:   err,
		}
	}
	req.Header.Set("Api-Key", r.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", mwalimu.Name+"/"+mwalimu.Version)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &mwalimu.UpstreamError{
			Service:   "pinecone",
			Message:   "query request failed",
			Cause:     err,
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &mwalimu.UpstreamError{
			Service:   "pinecone",
			Message:   fmt.Sprintf("query returned %d: %s", resp.StatusCode, detail),
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	var result pineconeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &mwalimu.UpstreamError{
			Service: "pinecone",
			Message: "decode query response",
			Cause:   err,
		}
	}

	passages := make([]Passage, 0, len(result.Matches))
	for _, m := range result.Matches {
		passages = append(passages, Passage{
			Text:        metadataString(m.Metadata, "page_content", "text"),
			Chapter:     metadataString(m.Metadata, "chapter"),
			ChapterRoot: metadataString(m.Metadata, "chapter_root"),
			Type:        metadataString(m.Metadata, "type"),
			Score:       m.Score,
		})
	}
	return passages, nil
}

// buildFilter translates a Filter into Pinecone's metadata filter syntax.
func buildFilter(f Filter) map[string]any {
	filter := make(map[string]any)
	if f.Type != "" {
		filter["type"] = map[string]any{"$eq": f.Type}
	}
	if len(f.Chapters) > 0 {
		filter["chapter"] = map[string]any{"$in": f.Chapters}
	}
	if f.ChapterRoot != "" {
		filter["chapter_root"] = map[string]any{"$eq": f.ChapterRoot}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

// metadataString returns the first present string value among the keys.
func metadataString(metadata map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Verify PineconeRetriever implements Retriever
var _ Retriever = (*PineconeRetriever)(nil)
