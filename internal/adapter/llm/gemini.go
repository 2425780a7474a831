package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"codeport/internal/domain"
)

// GeminiTranslator is a thin wrapper around the official genai client.
type GeminiTranslator struct {
	cli   *genai.Client
	model string
}

func NewGeminiTranslator(ctx context.Context, apiKeyEnv, model string) (*GeminiTranslator, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiTranslator{cli: cli, model: model}, nil
}

// CallChat maps system messages to the system instruction and assistant
// messages to the model role.
func (g *GeminiTranslator) CallChat(ctx context.Context, messages []domain.Message, unit domain.TranslationUnit) (domain.ChatResult, error) {
	contents, system := geminiContents(messages)

	var cfg genai.GenerateContentConfig
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, &cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && isValidationStatus(apiErr.Code) {
			return domain.ChatResult{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		return domain.ChatResult{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return domain.ChatResult{}, fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return domain.ChatResult{Text: text.String(), Unit: unit, Model: g.model}, nil
}

func (g *GeminiTranslator) ModelName() string { return g.model }

func geminiContents(messages []domain.Message) ([]*genai.Content, string) {
	var system []string
	var contents []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, m.Content)
		case domain.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}

	return contents, strings.Join(system, "\n\n")
}
