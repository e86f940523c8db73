// Package config loads process configuration from a YAML file and the
// environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://api.openai.com"

// Environment variables that override file values.
const (
	EnvToken           = "OPENAI_TOKEN" //nolint:gosec // variable name, not a credential
	EnvModel           = "OPENAI_MODEL"
	EnvBaseURL         = "OPENAI_BASE_URL"
	EnvCompletionModel = "DOCPIPE_COMPLETION_MODEL"
	EnvEmbeddingModel  = "DOCPIPE_EMBEDDING_MODEL"
	EnvTemplatesDir    = "DOCPIPE_TEMPLATES_DIR"
	EnvDev             = "DOCPIPE_DEV"
)

// Config is the process configuration. It is read-only once loaded.
type Config struct {
	Token           string `yaml:"openai_token"`
	Model           string `yaml:"model"` // Chat model.
	BaseURL         string `yaml:"base_url"`
	CompletionModel string `yaml:"completion_model"`
	EmbeddingModel  string `yaml:"embedding_model"`
	TemplatesDir    string `yaml:"templates_dir"`
	Dev             string `yaml:"dev"`
	Listen          string `yaml:"listen"` // Address of the HTTP API.
}

// Load reads the YAML file at path, expanding ${VAR} references, and then
// applies environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Config{BaseURL: DefaultBaseURL, Listen: ":8080"}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
		if err != nil {
			return Config{}, fmt.Errorf("config: load: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse: %w", err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	for env, field := range map[string]*string{
		EnvToken:           &c.Token,
		EnvModel:           &c.Model,
		EnvBaseURL:         &c.BaseURL,
		EnvCompletionModel: &c.CompletionModel,
		EnvEmbeddingModel:  &c.EmbeddingModel,
		EnvTemplatesDir:    &c.TemplatesDir,
		EnvDev:             &c.Dev,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
}

// Debug reports whether the dev flag is set.
func (c Config) Debug() bool {
	switch strings.ToLower(strings.TrimSpace(c.Dev)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: base_url is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("config: base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: base_url %q: scheme must be http or https", c.BaseURL)
	}

	switch strings.ToLower(strings.TrimSpace(c.Dev)) {
	case "", "true", "false", "1", "0", "yes", "no", "on", "off":
	default:
		return fmt.Errorf("config: dev %q is not a boolean", c.Dev)
	}

	return nil
}

// RequireChat reports an error when no chat model is configured.
func (c Config) RequireChat() error {
	if c.Model == "" {
		return fmt.Errorf("config: model is required for chat completions")
	}
	return nil
}
