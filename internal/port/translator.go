package port

import (
	"context"

	"codeport/internal/domain"
)

// Translator sends a chat conversation to a language model.
type Translator interface {
	// CallChat returns the model reply paired with the unit it answers.
	CallChat(ctx context.Context, messages []domain.Message, unit domain.TranslationUnit) (domain.ChatResult, error)

	// ModelName returns the name of the model.
	ModelName() string
}
