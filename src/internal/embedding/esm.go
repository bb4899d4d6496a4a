package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ESMClient talks to a protein language model sidecar that returns
// per-residue embeddings.
//
//	GET  /health -> {"device": "cuda:0", "model": "..."}
//	POST /embed  {"sequence": "..."} -> {"embeddings": [[...], ...]}
type ESMClient struct {
	baseURL string
	client  *http.Client
	device  string
	model   string
}

type esmHealth struct {
	Device string `json:"device"`
	Model  string `json:"model"`
}

type esmRequest struct {
	Sequence string `json:"sequence"`
}

type esmResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// DialESM checks the sidecar health endpoint and returns a client bound to it.
func DialESM(ctx context.Context, baseURL string, timeout time.Duration) (*ESMClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("esm provider requires embedding.url")
	}
	c := &ESMClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	var h esmHealth
	if err := c.do(req, &h); err != nil {
		return nil, fmt.Errorf("esm health check: %w", err)
	}
	c.device = h.Device
	if c.device == "" {
		c.device = "remote"
	}
	c.model = h.Model
	return c, nil
}

func (c *ESMClient) Device() string { return c.device }

func (c *ESMClient) Model() string { return c.model }

func (c *ESMClient) Embed(ctx context.Context, sequence string) ([][]float32, error) {
	body, err := json.Marshal(esmRequest{Sequence: sequence})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out esmResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if len(out.Embeddings) == 0 {
		return nil, fmt.Errorf("esm returned no embeddings")
	}
	return out.Embeddings, nil
}

func (c *ESMClient) do(req *http.Request, v any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("esm API error: %d - %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, v)
}
