package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"codeport/internal/adapter/lang"
	"codeport/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

const acknowledgement = "Ok"

// PromptData is the data available to every prompt template.
type PromptData struct {
	Source      string
	Dest        string
	SourceFence string
	DestFence   string
	Code        string
	Libraries   []string
}

// PromptBuilder renders the chat messages sent for each unit.
type PromptBuilder struct {
	tmpl *template.Template
	base PromptData
}

// NewPromptBuilder parses the embedded templates for a language pair.
// Libraries, when given, are suggested to the model in every request.
func NewPromptBuilder(src, dest lang.Dialect, libraries []string) (*PromptBuilder, error) {
	tmpl, err := template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptTemplates, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates: %w", err)
	}

	return &PromptBuilder{
		tmpl: tmpl,
		base: PromptData{
			Source:      src.Language.Title(),
			Dest:        dest.Language.Title(),
			SourceFence: src.FenceTag(),
			DestFence:   dest.FenceTag(),
			Libraries:   libraries,
		},
	}, nil
}

// SourceMessages builds the conversation for production code.
func (b *PromptBuilder) SourceMessages(code string) ([]domain.Message, error) {
	return b.messages("source_request.txt", code, true)
}

// TestMessages builds the conversation for test code.
func (b *PromptBuilder) TestMessages(code string) ([]domain.Message, error) {
	return b.messages("test_request.txt", code, false)
}

func (b *PromptBuilder) messages(request, code string, ackSystem bool) ([]domain.Message, error) {
	data := b.base
	data.Code = strings.TrimRight(code, "\n")

	system, err := b.render("system.txt", data)
	if err != nil {
		return nil, err
	}
	ask, err := b.render(request, data)
	if err != nil {
		return nil, err
	}
	body, err := b.render("code.txt", data)
	if err != nil {
		return nil, err
	}

	msgs := []domain.Message{{Role: domain.RoleSystem, Content: system}}
	if ackSystem {
		msgs = append(msgs, ack())
	}
	msgs = append(msgs,
		domain.Message{Role: domain.RoleUser, Content: ask},
		ack(),
		domain.Message{Role: domain.RoleUser, Content: body},
	)

	if len(data.Libraries) > 0 {
		libs, err := b.render("libraries.txt", data)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, ack(), domain.Message{Role: domain.RoleUser, Content: libs})
	}

	return msgs, nil
}

func (b *PromptBuilder) render(name string, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func ack() domain.Message {
	return domain.Message{Role: domain.RoleAssistant, Content: acknowledgement}
}
