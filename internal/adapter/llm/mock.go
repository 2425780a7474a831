package llm

import (
	"context"

	"codeport/internal/adapter/markdown"
	"codeport/internal/domain"
)

// MockTranslator echoes every unit back inside a fenced block. It performs
// no network calls and is used for dry runs.
type MockTranslator struct {
	fence string
}

func NewMockTranslator(fenceTag string) *MockTranslator {
	return &MockTranslator{fence: fenceTag}
}

func (m *MockTranslator) CallChat(ctx context.Context, messages []domain.Message, unit domain.TranslationUnit) (domain.ChatResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ChatResult{}, err
	}
	return domain.ChatResult{
		Text:  markdown.Fence(m.fence, unit.Source),
		Unit:  unit,
		Model: "mock",
	}, nil
}

func (m *MockTranslator) ModelName() string {
	return "mock"
}
