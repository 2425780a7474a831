// Package llm holds the chat translators and the decorators layered on them.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"codeport/internal/domain"
)

// OpenAITranslator talks to any OpenAI-compatible chat completions API.
type OpenAITranslator struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message      domain.Message `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// StatusError is a non-200 reply from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Body)
}

func NewOpenAITranslator(apiKeyEnv, model, baseURL string, timeout time.Duration) (*OpenAITranslator, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return NewOpenAICompatibleTranslator(apiKeyEnv, model, baseURL, timeout)
}

func NewDeepSeekTranslator(apiKeyEnv, model, baseURL string, timeout time.Duration) (*OpenAITranslator, error) {
	if baseURL == "" {
		baseURL = "https://api.deepseek.com/v1"
	}
	return NewOpenAICompatibleTranslator(apiKeyEnv, model, baseURL, timeout)
}

func NewOllamaTranslator(model, baseURL string, timeout time.Duration) *OpenAITranslator {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	return &OpenAITranslator{
		apiKey:  "ollama",
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func NewOpenAICompatibleTranslator(apiKeyEnv, model, baseURL string, timeout time.Duration) (*OpenAITranslator, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	return &OpenAITranslator{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (t *OpenAITranslator) CallChat(ctx context.Context, messages []domain.Message, unit domain.TranslationUnit) (domain.ChatResult, error) {
	jsonData, err := json.Marshal(chatRequest{
		Model:       t.model,
		Messages:    messages,
		Temperature: t.temperature,
	})
	if err != nil {
		return domain.ChatResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return domain.ChatResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.ChatResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ChatResult{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		serr := &StatusError{Code: resp.StatusCode, Body: string(body)}
		if isValidationStatus(resp.StatusCode) {
			return domain.ChatResult{}, fmt.Errorf("%w: %w", domain.ErrValidation, serr)
		}
		return domain.ChatResult{}, serr
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200]
		}
		return domain.ChatResult{}, fmt.Errorf("failed to parse response (body: %s): %w", bodyPreview, err)
	}

	if chatResp.Error != nil {
		return domain.ChatResult{}, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return domain.ChatResult{}, fmt.Errorf("API returned no choices")
	}

	return domain.ChatResult{
		Text:  chatResp.Choices[0].Message.Content,
		Unit:  unit,
		Model: t.model,
	}, nil
}

func (t *OpenAITranslator) ModelName() string {
	return t.model
}

func isValidationStatus(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusUnprocessableEntity:
		return true
	}
	return false
}
