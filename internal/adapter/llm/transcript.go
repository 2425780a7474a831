package llm

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeport/internal/adapter/fs"
	"codeport/internal/adapter/markdown"
	"codeport/internal/domain"
	"codeport/internal/port"
)

// TranscriptTranslator writes every successful exchange to a markdown file
// under dir/<date>/. Write failures are logged and never fail the call.
type TranscriptTranslator struct {
	next     port.Translator
	dir      string
	name     string
	fenceTag string
	now      func() time.Time
	logger   zerolog.Logger
}

func NewTranscriptTranslator(next port.Translator, dir, name, sourceFenceTag string) *TranscriptTranslator {
	if name == "" {
		name = "codeport"
	}
	return &TranscriptTranslator{
		next:     next,
		dir:      dir,
		name:     name,
		fenceTag: sourceFenceTag,
		now:      time.Now,
		logger:   log.Logger,
	}
}

func (t *TranscriptTranslator) CallChat(ctx context.Context, messages []domain.Message, unit domain.TranslationUnit) (domain.ChatResult, error) {
	res, err := t.next.CallChat(ctx, messages, unit)
	if err != nil {
		return res, err
	}

	path := t.path(unit)
	if werr := fs.WriteFile(path, t.render(unit, res)); werr != nil {
		t.logger.Warn().Err(werr).Str("path", path).Msg("failed to write transcript")
	}
	return res, nil
}

func (t *TranscriptTranslator) ModelName() string {
	return t.next.ModelName()
}

func (t *TranscriptTranslator) path(unit domain.TranslationUnit) string {
	now := t.now()
	stem := "unit"
	if unit.DestFilename != "" {
		base := filepath.Base(unit.DestFilename)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	file := fmt.Sprintf("%s-%s-%s-%d.md", t.name, now.Format("150405.000000"), stem, unit.Seq)
	return filepath.Join(t.dir, now.Format("2006-01-02"), file)
}

func (t *TranscriptTranslator) render(unit domain.TranslationUnit, res domain.ChatResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", unit.SymbolName)
	fmt.Fprintf(&b, "- source: `%s`\n- model: `%s`\n- cached: %t\n\n", unit.SourcePath, res.Model, res.Cached)
	b.WriteString("## Original\n\n")
	b.WriteString(markdown.Fence(t.fenceTag, unit.Source))
	b.WriteString("\n\n## Reply\n\n")
	b.WriteString(strings.TrimRight(res.Text, "\n"))
	b.WriteString("\n")
	return b.String()
}
