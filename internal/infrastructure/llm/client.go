// Package llm talks to an OpenAI-compatible chat-completions provider (Groq by
// default) and discovers which of its models to use.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

const (
	DefaultBaseURL       = "https://api.groq.com/openai/v1"
	DefaultFallbackModel = "llama-3.3-70b-versatile"
	defaultTimeout       = 120 * time.Second
	discoveryTTL         = 10 * time.Minute
)

// Config configures the provider client.
type Config struct {
	BaseURL           string
	APIKey            string
	PreferredPrefixes []string
	FallbackModel     string
	Timeout           time.Duration
}

// Request is one single-turn completion.
type Request struct {
	Operation   string
	Prompt      string
	Temperature float64
}

// Completion is the reply of the first model that answered.
type Completion struct {
	Text  string
	Model string
}

// Client is a chat-completions client with model discovery.
type Client struct {
	baseURL  string
	apiKey   string
	prefixes []string
	fallback string
	http     *http.Client
	logger   logging.Logger
	metrics  *prometheus.AppMetrics

	mu         sync.Mutex
	models     []string
	discovered time.Time
	now        func() time.Time
}

// NewClient builds a client. The API key is required.
func NewClient(cfg Config, logger logging.Logger, metrics *prometheus.AppMetrics) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.InvalidParam("llm api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.FallbackModel == "" {
		cfg.FallbackModel = DefaultFallbackModel
	}
	if len(cfg.PreferredPrefixes) == 0 {
		cfg.PreferredPrefixes = []string{"llama3", "llama"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		prefixes: cfg.PreferredPrefixes,
		fallback: cfg.FallbackModel,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}, nil
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Models returns the candidate models in the order they will be tried. The
// list is cached for a few minutes. It is never empty: the fallback model is
// always last.
func (c *Client) Models(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.models != nil && c.now().Sub(c.discovered) < discoveryTTL {
		return c.models
	}

	available, err := c.listModels(ctx)
	if err != nil {
		c.logger.Warn("model discovery failed; using fallback", logging.Err(err), logging.String("fallback", c.fallback))
	}
	c.models = SelectModels(available, c.prefixes, c.fallback)
	c.discovered = c.now()
	return c.models
}

// SelectModels keeps the names starting with one of prefixes, deduplicated and
// sorted. When nothing matches every name is kept. fallback always comes last.
func SelectModels(available, prefixes []string, fallback string) []string {
	seen := make(map[string]bool, len(available))
	var matched, all []string
	for _, name := range available {
		name = strings.TrimSpace(name)
		if name == "" || name == fallback || seen[name] {
			continue
		}
		seen[name] = true
		all = append(all, name)
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				matched = append(matched, name)
				break
			}
		}
	}

	out := matched
	if len(out) == 0 {
		out = all
	}
	sort.Strings(out)
	return append(out, fallback)
}

func (c *Client) listModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("list models: %s", resp.Status)
	}

	var list modelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}
	names := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		names = append(names, m.ID)
	}
	return names, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends req.Prompt as a single user message, trying each candidate
// model in turn until one returns text.
func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	var lastErr error
	for _, model := range c.Models(ctx) {
		start := time.Now()
		text, err := c.complete(ctx, model, req)
		c.metrics.RecordLLMCall(model, req.Operation, err == nil, time.Since(start))
		if err == nil {
			return &Completion{Text: text, Model: model}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("model failed; trying next",
			logging.String("model", model),
			logging.String("operation", req.Operation),
			logging.Err(err))
	}
	if errors.IsCode(lastErr, errors.ErrCodeLLMEmptyReply) {
		return nil, lastErr
	}
	return nil, errors.Wrap(lastErr, errors.ErrCodeLLMUnavailable, "no text-generation model answered")
}

func (c *Client) complete(ctx context.Context, model string, req Request) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("provider error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", errors.New(errors.ErrCodeLLMEmptyReply, "model returned no text")
	}
	return parsed.Choices[0].Message.Content, nil
}

//Personal.AI order the ending
