package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/config"
)

const anthropicAPI = "https://api.anthropic.com/v1/messages"

// replyExcerptChars bounds how much entry text is sent on the reply path
const replyExcerptChars = 1500

// State tags the outcome of a gateway call
type State int

const (
	// StateOk means the gateway returned usable text
	StateOk State = iota
	// StateUnavailable means the gateway is not configured
	StateUnavailable
	// StateFailed means the call was attempted and failed
	StateFailed
)

// Result is the tagged outcome of a gateway call. Callers branch on State
// and fall back to their rule-based counterpart for anything but StateOk.
type Result struct {
	State State
	Text  string
	Err   error
}

// Ok reports whether the result carries usable text
func (r Result) Ok() bool {
	return r.State == StateOk
}

// Gateway is a thin call to the Anthropic messages API with a fixed
// journaling-companion persona
type Gateway struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	cache      *memoCache
	log        *zap.Logger
}

// New creates a Gateway from config. A missing API key is not an error:
// the gateway simply reports itself unavailable.
func New(cfg config.Companion, log *zap.Logger) *Gateway {
	return &Gateway{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		endpoint:   anthropicAPI,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		cache:      newMemoCache(128),
		log:        log,
	}
}

// Available reports whether the gateway is configured. Never raises.
func (g *Gateway) Available() bool {
	return g.apiKey != ""
}

// Complete requests a completion for prompt, memoized on the exact request
// content. Suitable for the prompt/summary paths where identical context
// yields identical requests.
func (g *Gateway) Complete(ctx context.Context, prompt string, maxTokens int) Result {
	if !g.Available() {
		return Result{State: StateUnavailable}
	}

	key := fmt.Sprintf("%d\x00%s", maxTokens, prompt)
	if text, ok := g.cache.get(key); ok {
		return Result{State: StateOk, Text: text}
	}

	res := g.complete(ctx, prompt, maxTokens)
	if res.Ok() {
		g.cache.put(key, res.Text)
	}
	return res
}

// Reply asks the companion to react to one journal entry. Uncached: the
// reply belongs to this specific entry, and similar entries must never
// share one.
func (g *Gateway) Reply(ctx context.Context, entryText string) Result {
	if !g.Available() {
		return Result{State: StateUnavailable}
	}

	excerpt := entryText
	if runes := []rune(excerpt); len(runes) > replyExcerptChars {
		excerpt = string(runes[:replyExcerptChars])
	}

	prompt := "The user just wrote this journal entry:\n\n" + excerpt +
		"\n\nRespond with a short, warm, validating reflection (2-3 sentences). " +
		"Do not give advice or try to solve problems."

	return g.complete(ctx, prompt, 250)
}

func (g *Gateway) complete(ctx context.Context, prompt string, maxTokens int) Result {
	text, err := g.callAPI(ctx, prompt, maxTokens)
	if err != nil {
		g.log.Warn("companion call failed", zap.Error(err))
		return Result{State: StateFailed, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.log.Warn("companion returned empty text")
		return Result{State: StateFailed, Err: fmt.Errorf("empty completion")}
	}

	return Result{State: StateOk, Text: text}
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *Gateway) callAPI(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := apiRequest{
		Model:     g.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("api error: %s", apiResp.Error.Message)
	}

	for _, block := range apiResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("response missing text content")
}
