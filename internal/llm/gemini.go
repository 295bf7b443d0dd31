package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint (tests)
	BaseURL string
	Timeout time.Duration
}

// GeminiClient generates through the Google GenAI SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiClient creates the SDK client. The API key is required.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Generate asks for a JSON response with instruction as the system
// instruction. There are no retries.
func (c *GeminiClient) Generate(ctx context.Context, instruction, userText string) (string, error) {
	start := time.Now()
	c.logger.Debug("gemini request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(userText)))

	contents := []*genai.Content{
		genai.NewContentFromText(userText, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](Temperature),
		MaxOutputTokens:   MaxTokens,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		f := classifyGeminiError(err)
		c.logger.Warn("gemini request failed",
			zap.String("kind", string(f.Kind)),
			zap.Error(err))
		return "", f
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &Failure{Kind: KindOther, Detail: "no completion returned"}
	}

	c.logger.Debug("gemini response",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))
	return text, nil
}

// classifyGeminiError maps SDK errors: API errors by status code, anything
// else as a transport failure.
func classifyGeminiError(err error) *Failure {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return &Failure{Kind: KindTransport, Detail: "request failed", Err: err}
	}
	return &Failure{Kind: classifyStatus(code), Detail: fmt.Sprintf("status %d", code), Err: err}
}
