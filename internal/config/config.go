// Package config loads interviewer settings from an optional YAML file and
// the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/nexa/internal/domain"
)

const (
	defaultPort        = 8080
	defaultLatestLimit = 20
	defaultModel       = "gemini-2.0-flash-001"
	maxCategories      = 10
)

type Config struct {
	Interviewer InterviewerConfig `yaml:"interviewer"`
	Feedback    FeedbackConfig    `yaml:"feedback"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Server      ServerConfig      `yaml:"server"`
}

// InterviewerConfig addresses the voice gateway and its two call targets.
type InterviewerConfig struct {
	GatewayURL  string `yaml:"gateway_url"`
	PublicKey   string `yaml:"public_key"`
	WorkflowID  string `yaml:"workflow_id"`
	AssistantID string `yaml:"assistant_id"`
}

type FeedbackConfig struct {
	Categories []string `yaml:"categories"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
}

type ServerConfig struct {
	Port        int `yaml:"port"`
	LatestLimit int `yaml:"latest_limit"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Feedback: FeedbackConfig{Categories: append([]string(nil), domain.DefaultFeedbackCategories...)},
		Gemini:   GeminiConfig{Model: defaultModel},
		Server:   ServerConfig{Port: defaultPort, LatestLimit: defaultLatestLimit},
	}
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.fillDefaults()

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Resolve loads path when given (falling back to NEXA_CONFIG), then applies
// environment overrides.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("NEXA_CONFIG")
	}

	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv()
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from NEXA_* variables and PORT.
func (c *Config) ApplyEnv() {
	setString(&c.Interviewer.GatewayURL, "NEXA_VAPI_URL")
	setString(&c.Interviewer.PublicKey, "NEXA_VAPI_PUBLIC_KEY")
	setString(&c.Interviewer.WorkflowID, "NEXA_VAPI_WORKFLOW_ID")
	setString(&c.Interviewer.AssistantID, "NEXA_VAPI_ASSISTANT_ID")
	setString(&c.Gemini.Model, "NEXA_GEMINI_MODEL")

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c *Config) fillDefaults() {
	if len(c.Feedback.Categories) == 0 {
		c.Feedback.Categories = append([]string(nil), domain.DefaultFeedbackCategories...)
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultModel
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LatestLimit == 0 {
		c.Server.LatestLimit = defaultLatestLimit
	}
}

func validateConfig(c *Config) error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.LatestLimit < 0 {
		return fmt.Errorf("server.latest_limit cannot be negative")
	}
	if len(c.Feedback.Categories) > maxCategories {
		return fmt.Errorf("feedback.categories has %d entries, at most %d allowed", len(c.Feedback.Categories), maxCategories)
	}

	seen := make(map[string]bool, len(c.Feedback.Categories))
	for i, cat := range c.Feedback.Categories {
		name := strings.TrimSpace(cat)
		if name == "" {
			return fmt.Errorf("feedback category %d must have a name", i+1)
		}
		if seen[strings.ToLower(name)] {
			return fmt.Errorf("feedback category %q is listed twice", name)
		}
		seen[strings.ToLower(name)] = true
	}

	if u := c.Interviewer.GatewayURL; u != "" && !strings.HasPrefix(u, "ws://") && !strings.HasPrefix(u, "wss://") {
		return fmt.Errorf("interviewer.gateway_url must be a ws:// or wss:// URL")
	}
	return nil
}
