// Package retrieval wraps the external vector-search backend.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kartavya/ragchat/internal/fault"
	"github.com/kartavya/ragchat/internal/model/rag"
)

// DefaultTopK bounds retrieval when the caller does not specify a limit.
const DefaultTopK = 5

// Client calls the retrieval backend. It performs no caching and no retries;
// transient failures propagate to the orchestrator.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a retrieval client against baseURL. Every call is bounded
// by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type retrieveRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

type retrieveResponse struct {
	Results []rag.Passage `json:"results"`
}

// Retrieve returns passages ranked by the backend, most relevant first. An
// empty slice is a valid outcome meaning no relevant passages exist, distinct
// from a backend failure.
func (c *Client) Retrieve(ctx context.Context, query string, topK int) ([]rag.Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fault.New(fault.InvalidRequest, "retrieve", fmt.Errorf("query is empty"))
	}
	if topK < 1 {
		topK = DefaultTopK
	}

	body, err := json.Marshal(retrieveRequest{Query: query, NResults: topK})
	if err != nil {
		return nil, fault.New(fault.RetrievalUnavailable, "retrieve", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fault.New(fault.RetrievalUnavailable, "retrieve", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fault.New(fault.RetrievalUnavailable, "retrieve", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fault.New(fault.RetrievalUnavailable, "retrieve", fmt.Errorf("backend returned status %d", resp.StatusCode))
	}

	var payload retrieveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fault.New(fault.RetrievalUnavailable, "retrieve", err)
	}

	return payload.Results, nil
}
