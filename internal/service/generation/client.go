// Package generation wraps the external text-generation backend.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kartavya/ragchat/internal/fault"
)

// NoAnswer is returned when the backend yields no usable candidate. It is a
// soft failure: the orchestrator persists and returns it like any other
// answer so queries are never fully starved.
const NoAnswer = "No answer generated."

// Client calls the generateContent endpoint of the completion backend.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

// NewClient builds a generation client. Every call is bounded by timeout.
func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate completes the prompt and extracts the first candidate's primary
// text. Hard backend failures surface as GenerationUnavailable; an empty or
// missing candidate degrades to NoAnswer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fault.New(fault.GenerationUnavailable, "generate", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fault.New(fault.GenerationUnavailable, "generate", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fault.New(fault.GenerationUnavailable, "generate", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fault.New(fault.GenerationUnavailable, "generate", fmt.Errorf("backend returned status %d", resp.StatusCode))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fault.New(fault.GenerationUnavailable, "generate", err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return NoAnswer, nil
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return NoAnswer, nil
	}
	return text, nil
}
