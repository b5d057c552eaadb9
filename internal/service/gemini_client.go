package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/examhub/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

var (
	// ErrLLMUnavailable is returned when no GEMINI_API_KEY was configured.
	ErrLLMUnavailable = errors.New("language model is not configured")
	// ErrLLMFailed wraps errors and empty responses from the model provider.
	ErrLLMFailed = errors.New("language model request failed")
)

// LLMClient generates a text completion for a prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

type geminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient returns a client that answers ErrLLMUnavailable when no API key is set.
func NewGeminiClient(cfg *config.Config) (LLMClient, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Review suggestions will be unavailable.")
		return &geminiClient{}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel(cfg.Gemini.Model)
	model.SetTemperature(0.2)
	log.Info().Str("model", cfg.Gemini.Model).Msg("Gemini client initialized")
	return &geminiClient{client: client, model: model}, nil
}

func (g *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if g.model == nil {
		return "", ErrLLMUnavailable
	}
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMFailed, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrLLMFailed)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: no text content", ErrLLMFailed)
	}
	return text.String(), nil
}

func (g *geminiClient) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
