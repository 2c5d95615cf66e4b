// Package gemini scores interview transcripts and drafts interview questions
// with the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash-001"

var ErrEmptyResponse = errors.New("model returned an empty response")

// Config for the Gemini client.
type Config struct {
	APIKey string
	Model  string
}

// LoadConfig reads NEXA_GEMINI_API_KEY and NEXA_GEMINI_MODEL.
func LoadConfig() Config {
	cfg := Config{
		APIKey: os.Getenv("NEXA_GEMINI_API_KEY"),
		Model:  os.Getenv("NEXA_GEMINI_MODEL"),
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return cfg
}

// contentGenerator is the part of genai.Models this package calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements ports.Scorer and ports.QuestionGenerator.
type Client struct {
	models contentGenerator
	model  string
	logger *slog.Logger
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newClient(gc.Models, cfg.Model, logger), nil
}

func newClient(models contentGenerator, model string, logger *slog.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{models: models, model: model, logger: logger.With("component", "gemini")}
}

// generateJSON asks for a JSON document matching schema and decodes it into out.
func (c *Client) generateJSON(ctx context.Context, system, prompt string, schema *genai.Schema, out any) error {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
		Temperature:       genai.Ptr[float32](0.2),
	})
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		c.logger.Debug("undecodable model output", "output", text)
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}
