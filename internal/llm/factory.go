package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hpungsan/hookcard/internal/config"
)

// New builds the generator named by cfg.Provider. Without an API key it
// returns Unconfigured, so callers see an auth failure at generation time
// rather than at startup.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (TextGenerator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		logger.Debug("no generation API key configured", zap.String("provider", cfg.Provider))
		return Unconfigured{Provider: cfg.Provider}, nil
	}

	switch cfg.Provider {
	case config.ProviderGroq, "":
		return NewGroqClient(GroqConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.GroqBaseURL,
			Model:   cfg.Model,
			Timeout: cfg.HTTPTimeout(),
		}, logger), nil
	case config.ProviderGemini:
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.HTTPTimeout(),
		}, logger)
	default:
		return nil, fmt.Errorf("unknown provider %q (want %q or %q)", cfg.Provider, config.ProviderGroq, config.ProviderGemini)
	}
}
