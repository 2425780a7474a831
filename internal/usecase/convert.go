package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeport/internal/adapter/fs"
	"codeport/internal/adapter/lang"
	"codeport/internal/domain"
	"codeport/internal/port"
)

// ConvertUseCase converts source files into the destination language.
type ConvertUseCase struct {
	src         lang.Dialect
	dest        lang.Dialect
	translator  port.Translator
	walker      port.FileWalker
	prompts     *PromptBuilder
	assembler   *Assembler
	concurrency int
	dryRun      bool
	runID       string
	progress    func(done, total int)
	logger      zerolog.Logger
}

// NewConvertUseCase creates a new convert use case.
func NewConvertUseCase(
	src, dest lang.Dialect,
	translator port.Translator,
	walker port.FileWalker,
	prompts *PromptBuilder,
	concurrency int,
) *ConvertUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ConvertUseCase{
		src:         src,
		dest:        dest,
		translator:  translator,
		walker:      walker,
		prompts:     prompts,
		assembler:   NewAssembler(dest),
		concurrency: concurrency,
		logger:      log.Logger,
	}
}

// WithLogger sets the logger used for the run.
func (u *ConvertUseCase) WithLogger(logger zerolog.Logger) *ConvertUseCase {
	u.logger = logger
	return u
}

// WithProgress registers a callback invoked after every translated unit.
// It may be called from several goroutines.
func (u *ConvertUseCase) WithProgress(fn func(done, total int)) *ConvertUseCase {
	u.progress = fn
	return u
}

// WithDryRun disables writing output files.
func (u *ConvertUseCase) WithDryRun(dryRun bool) *ConvertUseCase {
	u.dryRun = dryRun
	return u
}

// WithRunID fixes the run id instead of generating one.
func (u *ConvertUseCase) WithRunID(runID string) *ConvertUseCase {
	u.runID = runID
	return u
}

// ConvertResult contains the results of a conversion run.
type ConvertResult struct {
	RunID           string
	FilesConverted  int
	FilesSkipped    int
	UnitsTranslated int
	CacheHits       int
	Outputs         []string
	Failures        []domain.MatchFailure
	Gaps            []domain.GroupingGap
	Errors          []error
}

// job is one destination file: the units to translate and their replies,
// stored by submission index.
type job struct {
	source   string
	dest     string
	pkg      string
	units    []domain.TranslationUnit
	messages [][]domain.Message
	results  []domain.ChatResult
}

// Convert translates src, a file or a directory, into destRoot. Files that
// fail to parse are recorded and skipped when converting a directory; a
// single file's parse error is returned. A failed translation aborts the run.
func (u *ConvertUseCase) Convert(ctx context.Context, src, destRoot string) (*ConvertResult, error) {
	runID := u.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	result := &ConvertResult{RunID: runID}
	logger := u.logger.With().Str("run_id", result.RunID).Logger()

	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}
	single := !info.IsDir()

	files, err := u.walker.Walk(src)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	var jobs []*job
	for _, file := range files {
		dest := u.destPath(file, destRoot, single)

		fileJobs, err := u.prepare(file, dest, result, logger)
		if err != nil {
			if single {
				return nil, err
			}
			result.Errors = append(result.Errors, err)
			result.FilesSkipped++
			logger.Error().Err(err).Str("file", file.Rel).Msg("skipping file")
			continue
		}
		jobs = append(jobs, fileJobs...)
	}

	if err := u.translate(ctx, jobs, logger); err != nil {
		return nil, err
	}

	for _, j := range jobs {
		for _, res := range j.results {
			result.UnitsTranslated++
			if res.Cached {
				result.CacheHits++
			}
		}

		file := u.assembler.WithLogger(logger.With().Str("file", j.dest).Logger()).Assemble(j.pkg, j.results)
		result.Failures = append(result.Failures, file.Failures...)
		result.Outputs = append(result.Outputs, j.dest)

		if u.dryRun {
			logger.Info().Str("file", j.dest).Int("blocks", len(file.Blocks)).Msg("dry run, not writing")
			continue
		}
		if err := fs.WriteFile(j.dest, file.String()); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", j.dest, err)
		}
		logger.Info().Str("file", j.dest).Int("failures", len(file.Failures)).Msg("wrote file")
	}

	result.FilesConverted = len(files) - result.FilesSkipped
	return result, nil
}

// prepare splits, parses and enumerates one source file into one job for
// its production code and, when present, one for its tests.
func (u *ConvertUseCase) prepare(file port.FileInfo, dest string, result *ConvertResult, logger zerolog.Logger) ([]*job, error) {
	content, err := fs.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	production, tests, err := u.src.Splitter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("failed to split %s: %w", file.Rel, err)
	}

	pkg := filepath.Base(filepath.Dir(file.Path))

	var jobs []*job
	parts := []struct {
		code     string
		dest     string
		messages func(string) ([]domain.Message, error)
	}{
		{production, dest, u.prompts.SourceMessages},
		{tests, testPath(dest), u.prompts.TestMessages},
	}

	for _, part := range parts {
		if strings.TrimSpace(part.code) == "" {
			continue
		}

		parsed, err := u.src.Parser.Parse(part.code)
		if err != nil {
			var perr *domain.ParseError
			if errors.As(err, &perr) {
				perr.Path = file.Path
			}
			return nil, err
		}

		e := NewEnumerator(parsed, file.Path, part.dest)
		j := &job{source: file.Path, dest: part.dest, pkg: pkg}
		for {
			unit, ok := e.Next()
			if !ok {
				break
			}
			msgs, err := part.messages(unit.Source)
			if err != nil {
				return nil, err
			}
			j.units = append(j.units, unit)
			j.messages = append(j.messages, msgs)
		}

		for _, gap := range e.Gaps() {
			logger.Warn().Str("file", file.Rel).Str("owner", gap.Owner).Strs("members", gap.Members).Msg("type not declared in file")
		}
		result.Gaps = append(result.Gaps, e.Gaps()...)

		j.results = make([]domain.ChatResult, len(j.units))
		jobs = append(jobs, j)
		logger.Debug().Str("file", file.Rel).Str("dest", part.dest).Int("units", len(j.units)).Msg("queued")
	}

	return jobs, nil
}

// translate issues every unit of every job concurrently. Each reply lands
// in the slot of the unit that produced it, so completion order is
// irrelevant to assembly.
func (u *ConvertUseCase) translate(ctx context.Context, jobs []*job, logger zerolog.Logger) error {
	total := 0
	for _, j := range jobs {
		total += len(j.units)
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for _, j := range jobs {
		for i, unit := range j.units {
			g.Go(func() error {
				res, err := u.translator.CallChat(gctx, j.messages[i], unit)
				if err != nil {
					return fmt.Errorf("failed to translate %s in %s: %w", unit.SymbolName, j.source, err)
				}
				res.Unit = unit
				j.results[i] = res

				n := int(done.Add(1))
				logger.Debug().Str("unit", unit.SymbolName).Bool("cached", res.Cached).Int("done", n).Int("total", total).Msg("translated")
				if u.progress != nil {
					u.progress(n, total)
				}
				return nil
			})
		}
	}

	return g.Wait()
}

// destPath mirrors a source file under destRoot with the destination
// extension. For a single file, destRoot may itself name the output file.
func (u *ConvertUseCase) destPath(file port.FileInfo, destRoot string, single bool) string {
	ext := u.dest.Extension()
	if single && strings.EqualFold(filepath.Ext(destRoot), ext) {
		return destRoot
	}
	rel := filepath.FromSlash(file.Rel)
	return filepath.Join(destRoot, strings.TrimSuffix(rel, filepath.Ext(rel))+ext)
}

// testPath returns the sibling test file for dest: foo.go becomes foo_test.go.
func testPath(dest string) string {
	ext := filepath.Ext(dest)
	return strings.TrimSuffix(dest, ext) + "_test" + ext
}
