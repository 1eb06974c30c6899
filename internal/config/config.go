package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/markis/copilot-chat/internal/chat"
)

const (
	configDirName = "copilot-chat"
	defaultConfig = ".config"
)

var configFiles = []string{
	"config.yaml",
	"config.yml",
}

// Config represents the structure of the configuration file used by the application.
type Config struct {
	Model       string            `yaml:"model" default:"gpt-3.5-turbo"`
	Temperature float64           `yaml:"temperature" default:"0.7"`
	MaxTokens   int               `yaml:"max_tokens" default:"1000"`
	LogLevel    string            `yaml:"log_level" default:"error"`
	Render      Render            `yaml:"render"`
	Prompts     map[string]Prompt `yaml:"prompts"`
	Providers   Providers         `yaml:"providers"`

	env Environment
}

// Render formats.
const (
	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
)

// Render controls terminal output.
type Render struct {
	Format string `yaml:"format" default:"markdown"`
	Wrap   int    `yaml:"wrap" default:"120"`
}

// Prompt is a predefined command exposed as a CLI subcommand.
type Prompt struct {
	Prompt string `yaml:"prompt"`
	Model  string `yaml:"model"`
}

// newDefaultConfig creates a configuration populated from the default tags.
func newDefaultConfig() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// Only reachable with a malformed default tag.
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	if cfg.Prompts == nil {
		cfg.Prompts = map[string]Prompt{}
	}
	return cfg
}

// configResult is a struct used to return the configuration and any error that occurs during loading.
type configResult struct {
	config *Config
	err    error
}

// getConfigPath retrieves the path to the configuration directory based on the XDG_CONFIG_HOME environment variable.
func getConfigPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(home, defaultConfig)
	}

	return filepath.Join(configHome, configDirName), nil
}

// tryLoadConfig attempts to load a configuration file from the specified path.
func tryLoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := newDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadConfig loads the configuration file and the environment fallbacks, with a timeout.
func LoadConfig(ctx context.Context) (*Config, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result := make(chan configResult, 1)

	go func() {
		cfg, err := loadConfigFiles(ctx)
		if err == nil {
			cfg.env, err = LoadEnvironment()
		}
		result <- configResult{config: cfg, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-result:
		return r.config, r.err
	}
}

// loadConfigFiles loads configuration files from the user's config directory.
func loadConfigFiles(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error before loading config: %w", err)
	}

	configDir, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	// Return default config early if directory doesn't exist
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return newDefaultConfig(), nil
	}

	for _, filename := range configFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cfg, err := tryLoadConfig(filepath.Join(configDir, filename))
		if err == nil {
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config from %s: %w", filename, err)
		}
	}

	return newDefaultConfig(), nil
}

// BaseURL returns the OpenAI endpoint, preferring the config file over the environment.
func (c *Config) BaseURL() string {
	return firstNonEmpty(c.Providers.OpenAI.BaseURL, c.env.OpenAIBaseURL)
}

// Params resolves the request parameters for model, falling back to the
// configured model when it is empty. The OpenAI credential and organization
// come from the config file first and the environment second.
func (c *Config) Params(model string) chat.Params {
	return chat.Params{
		Model:        firstNonEmpty(model, c.Model),
		APIKey:       firstNonEmpty(c.Providers.OpenAI.APIKey, c.env.OpenAIAPIKey),
		Organization: firstNonEmpty(c.Providers.OpenAI.Organization, c.env.OpenAIOrganization),
		Temperature:  c.Temperature,
		MaxTokens:    c.MaxTokens,
	}
}

// Validate checks that a request can be built from the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Params("").APIKey == "" {
		errs = append(errs, errors.New("no OpenAI API key: set providers.openai.api_key or OPENAI_API_KEY"))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %.2f is outside [0, 2]", c.Temperature))
	}
	if c.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens))
	}
	if f := c.Render.Format; f != FormatMarkdown && f != FormatPlain {
		errs = append(errs, fmt.Errorf("render.format %q is not %q or %q", f, FormatMarkdown, FormatPlain))
	}
	if err := c.Providers.validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel, defaulting to warn for unknown values.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelWarn
	}
	return level
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
