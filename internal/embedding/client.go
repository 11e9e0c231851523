package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client calls an OpenAI-compatible embeddings API.
type Client struct {
	Endpoint string // base URL, e.g. https://ai.gateway.example.dev
	APIKey   string
	Model    string
	HTTP     *http.Client
}

const DefaultModel = "text-embedding-3-small"

func NewClient(endpoint, apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{Endpoint: endpoint, APIKey: apiKey, Model: model, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

// Embed returns the vector for the given input text.
func (c *Client) Embed(ctx context.Context, input string) ([]float64, error) {
	body, err := json.Marshal(map[string]string{"model": c.Model, "input": input})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings api status %d", resp.StatusCode)
	}
	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("embeddings api returned no data")
	}
	return out.Data[0].Embedding, nil
}
