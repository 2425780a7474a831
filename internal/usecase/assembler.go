package usecase

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeport/internal/adapter/lang"
	"codeport/internal/adapter/markdown"
	"codeport/internal/domain"
)

// Assembler rebuilds a destination file from model replies.
type Assembler struct {
	dialect lang.Dialect
	logger  zerolog.Logger
}

// NewAssembler creates an assembler writing the given destination dialect.
func NewAssembler(dest lang.Dialect) *Assembler {
	return &Assembler{dialect: dest, logger: log.Logger}
}

// WithLogger returns a copy of the assembler that logs to logger.
func (a *Assembler) WithLogger(logger zerolog.Logger) *Assembler {
	c := *a
	c.logger = logger
	return &c
}

// Assemble resolves every reply in the order given. Replies whose code
// cannot be matched are kept as comments and reported in Failures.
func (a *Assembler) Assemble(packageName string, results []domain.ChatResult) *domain.AssembledFile {
	file := &domain.AssembledFile{Header: a.dialect.Renderer.Header(packageName)}
	claimed := make(claimSet)
	imports := make(map[string]bool)

	for _, res := range results {
		blocks := markdown.ExtractCodeBlocks(res.Text, a.dialect.FenceTags...)

		resolved := false
		for _, block := range blocks {
			m, ok, err := matchBlock(a.dialect.Parser, block, res.Unit, claimed)
			if err != nil {
				a.logger.Debug().Err(err).Str("unit", res.Unit.SymbolName).Msg("skipping unparseable block")
				continue
			}
			if !ok {
				continue
			}

			for _, key := range m.keys {
				claimed[key] = true
			}
			for _, name := range m.imports {
				imports[name] = true
			}
			file.Blocks = append(file.Blocks, m.code)
			resolved = true
			break
		}

		if resolved {
			continue
		}

		failure := domain.MatchFailure{Unit: res.Unit, Candidates: len(blocks)}
		file.Failures = append(file.Failures, failure)
		a.logger.Warn().Str("unit", res.Unit.SymbolName).Int("candidates", len(blocks)).Msg("no matching code in reply")

		file.Blocks = append(file.Blocks, a.dialect.Renderer.Comment(res.Unit.Source))
		for _, block := range blocks {
			file.Blocks = append(file.Blocks, a.dialect.Renderer.Comment(block))
		}
	}

	names := make([]string, 0, len(imports))
	for name := range imports {
		names = append(names, name)
	}
	sort.Strings(names)
	file.Imports = a.dialect.Renderer.Imports(names)

	return file
}
