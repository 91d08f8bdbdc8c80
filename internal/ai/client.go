// Package ai is a thin HTTP client for an Ollama-compatible completion
// backend. The realtime layer treats it as an opaque text-completion service.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"collab-service/internal/config"
)

type Client struct {
	host   string
	model  string
	client *http.Client
}

func NewClient(cfg config.OllamaConfig) *Client {
	return &Client{
		host:   cfg.Host,
		model:  cfg.Model,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete sends a prompt to the /api/generate endpoint and returns the
// completion text.
func (c *Client) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai service unavailable: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai service error: status %d", res.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ai service returned malformed response: %w", err)
	}
	return out.Response, nil
}

// Healthy reports whether the backend answers its model listing endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return false
	}

	res, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK
}
