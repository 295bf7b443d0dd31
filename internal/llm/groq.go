package llm

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
)

// Groq defaults.
const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
)

// maxErrorBody bounds how much of an error response is kept as detail.
const maxErrorBody = 2048

// GroqConfig configures a GroqClient.
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GroqClient talks to any OpenAI-compatible chat completions endpoint,
// Groq's by default.
type GroqClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGroqClient applies defaults for empty config values.
func NewGroqClient(cfg GroqConfig, logger *zap.Logger) *GroqClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGroqModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroqClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Generate sends one chat completion request. There are no retries.
func (c *GroqClient) Generate(ctx context.Context, instruction, userText string) (string, error) {
	if c.apiKey == "" {
		return "", notConfigured("groq")
	}

	start := time.Now()
	c.logger.Debug("groq request",
		zap.String("model", c.model),
		zap.Int("instruction_len", len(instruction)),
		zap.Int("prompt_len", len(userText)))

	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: userText},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return "", &Failure{Kind: KindOther, Detail: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", &Failure{Kind: KindOther, Detail: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("groq request failed", zap.Error(err))
		return "", &Failure{Kind: KindTransport, Detail: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Failure{Kind: KindTransport, Detail: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		kind := classifyStatus(resp.StatusCode)
		c.logger.Warn("groq returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("kind", string(kind)))
		return "", &Failure{
			Kind:   kind,
			Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(body), maxErrorBody)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Failure{Kind: KindOther, Detail: "unreadable response", Err: err}
	}
	if parsed.Error != nil {
		return "", &Failure{Kind: KindOther, Detail: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", &Failure{Kind: KindOther, Detail: "no completion returned"}
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	c.logger.Debug("groq response",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
