package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Config holds generative model settings
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	// BaseURL overrides the Gemini API endpoint, mainly for tests
	BaseURL string
}

// Generator produces safety assessments with a Gemini model
type Generator struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewGenerator creates a Gemini-backed text generator
func NewGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Generator{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger.Named("genai"),
	}, nil
}

// Generate sends prompt to the model and returns the text of the first candidate
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		g.logger.Error("generate content failed", zap.String("model", g.model), zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", domain.ErrAnalysisFailed)
	}

	g.logger.Info("content generated",
		zap.String("model", g.model),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(text)),
		zap.Duration("latency", time.Since(start)))
	return text, nil
}
