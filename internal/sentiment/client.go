package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pbaille/journal/internal/config"
)

// Polarity is the raw output of the underlying classifier: a binary class
// name and a confidence in [0,1]
type Polarity struct {
	Class      string
	Confidence float64
}

// Classifier produces a binary polarity classification for text
type Classifier interface {
	Classify(ctx context.Context, text string) (Polarity, error)
}

// Client calls a hosted text-classification service
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a classifier Client from config
func NewClient(cfg config.Sentiment) *Client {
	return &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

type candidate struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify sends text to the classification service and returns the
// top-ranked polarity class
func (c *Client) Classify(ctx context.Context, text string) (Polarity, error) {
	jsonBody, err := json.Marshal(classifyRequest{Inputs: text})
	if err != nil {
		return Polarity{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return Polarity{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Polarity{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Polarity{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Polarity{}, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	// The service returns one list of ranked candidates per input.
	var results [][]candidate
	if err := json.Unmarshal(body, &results); err != nil {
		return Polarity{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(results) == 0 || len(results[0]) == 0 {
		return Polarity{}, fmt.Errorf("empty classification result")
	}

	best := results[0][0]
	for _, cand := range results[0][1:] {
		if cand.Score > best.Score {
			best = cand
		}
	}

	return Polarity{Class: best.Label, Confidence: best.Score}, nil
}
