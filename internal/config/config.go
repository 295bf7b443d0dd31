package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/hookcard/internal/card"
)

// Providers accepted in the provider key.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// DefaultShareBaseURL is the hosting page share links point at.
const DefaultShareBaseURL = "https://hookcard.app/"

// DirName is the config directory name, both under $HOME and in repos.
const DirName = ".hookcard"

// Config holds application configuration.
type Config struct {
	// Provider selects the generation backend: "groq" (default) or "gemini"
	Provider string `json:"provider,omitempty"`

	// Model overrides the backend's default model
	Model string `json:"model,omitempty"`

	// APIKey for the generation backend. Prefer the environment variables;
	// a key in a repo config ends up in version control.
	APIKey string `json:"api_key,omitempty"`

	// GroqBaseURL points the Groq backend at another OpenAI-compatible server.
	GroqBaseURL string `json:"groq_base_url,omitempty"`

	// ShareBaseURL is the page share links are built on.
	ShareBaseURL string `json:"share_base_url,omitempty"`

	// HTTPTimeoutSeconds bounds every outbound request (generation and webhooks).
	HTTPTimeoutSeconds int `json:"http_timeout_seconds,omitempty"`

	// LintLimits overrides individual caps; zero fields keep the default.
	LintLimits card.Limits `json:"lint_limits"`

	// AllowedPaths is an allowlist of directories for card files and export output.
	// Paths outside ~/.hookcard/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for file reads and writes.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// All tools are enabled by default. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:           ProviderGroq,
		ShareBaseURL:       DefaultShareBaseURL,
		HTTPTimeoutSeconds: 30,
		LintLimits:         card.DefaultLimits(),
	}
}

// HTTPTimeout returns HTTPTimeoutSeconds as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.hookcard.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.hookcard) and repo (.hookcard) directories.
// Repo config is found by walking upward from startDir to find the nearest .hookcard/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	// Walk upward from startDir to find repo config
	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .hookcard/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// ApplyEnv overlays environment variables onto cfg. getenv is os.Getenv
// outside tests.
//
//	HOOKCARD_PROVIDER        provider
//	HOOKCARD_SHARE_BASE_URL  share_base_url
//	GROQ_API_KEY             api_key when the provider is groq
//	GEMINI_API_KEY           api_key when the provider is gemini
//	GOOGLE_API_KEY           fallback for GEMINI_API_KEY
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv("HOOKCARD_PROVIDER")); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv("HOOKCARD_SHARE_BASE_URL")); v != "" {
		cfg.ShareBaseURL = v
	}

	var key string
	switch cfg.Provider {
	case ProviderGemini:
		key = getenv("GEMINI_API_KEY")
		if key == "" {
			key = getenv("GOOGLE_API_KEY")
		}
	default:
		key = getenv("GROQ_API_KEY")
	}
	if key = strings.TrimSpace(key); key != "" {
		cfg.APIKey = key
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, return zero config
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.Provider = mergeString(base.Provider, overlay.Provider)
	result.Model = mergeString(base.Model, overlay.Model)
	result.APIKey = mergeString(base.APIKey, overlay.APIKey)
	result.GroqBaseURL = mergeString(base.GroqBaseURL, overlay.GroqBaseURL)
	result.ShareBaseURL = mergeString(base.ShareBaseURL, overlay.ShareBaseURL)

	result.HTTPTimeoutSeconds = overlay.HTTPTimeoutSeconds
	if result.HTTPTimeoutSeconds <= 0 {
		result.HTTPTimeoutSeconds = base.HTTPTimeoutSeconds
	}

	result.LintLimits = mergeLimits(base.LintLimits, overlay.LintLimits)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func mergeString(base, overlay string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}

// mergeLimits takes each non-zero cap from overlay.
func mergeLimits(base, overlay card.Limits) card.Limits {
	pick := func(b, o int) int {
		if o > 0 {
			return o
		}
		return b
	}
	return card.Limits{
		Title:       pick(base.Title, overlay.Title),
		Description: pick(base.Description, overlay.Description),
		Fields:      pick(base.Fields, overlay.Fields),
		FieldName:   pick(base.FieldName, overlay.FieldName),
		FieldValue:  pick(base.FieldValue, overlay.FieldValue),
		FooterText:  pick(base.FooterText, overlay.FooterText),
		AuthorName:  pick(base.AuthorName, overlay.AuthorName),
		Total:       pick(base.Total, overlay.Total),
	}
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
