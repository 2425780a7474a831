package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"codeport/config"
	"codeport/internal/adapter/cache"
	"codeport/internal/adapter/fs"
	"codeport/internal/adapter/lang"
	"codeport/internal/adapter/llm"
	"codeport/internal/port"
	"codeport/internal/usecase"
)

var (
	convertSrcLang     string
	convertDestLang    string
	convertModel       string
	convertProvider    string
	convertExcludes    []string
	convertConcurrency int
	convertNoCache     bool
	convertDryRun      bool
)

var convertCmd = &cobra.Command{
	Use:   "convert SRC DEST",
	Short: "Translate a file or directory into another language",
	Long: `Translate every source file under SRC into the destination language,
mirroring the directory layout under DEST. Embedded test regions are
translated into a sibling test file.

Examples:
  codeport convert ./src ./out
  codeport convert lib.rs lib.go --model gpt-4o
  codeport convert ./pkg ./out --src-lang python --dest-lang typescript --dry-run`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertSrcLang, "src-lang", "", "source language (default from config)")
	convertCmd.Flags().StringVar(&convertDestLang, "dest-lang", "", "destination language (default from config)")
	convertCmd.Flags().StringVar(&convertModel, "model", "", "model name (default from config)")
	convertCmd.Flags().StringVar(&convertProvider, "provider", "", "openai, deepseek, ollama, gemini or mock (default from config)")
	convertCmd.Flags().StringArrayVar(&convertExcludes, "exclude", nil, "additional exclude glob, repeatable")
	convertCmd.Flags().IntVar(&convertConcurrency, "concurrency", 0, "concurrent model requests (default from config)")
	convertCmd.Flags().BoolVar(&convertNoCache, "no-cache", false, "bypass the response cache")
	convertCmd.Flags().BoolVar(&convertDryRun, "dry-run", false, "use the mock model and write nothing")
}

func runConvert(cmd *cobra.Command, args []string) error {
	src, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	dest, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	c := applyConvertFlags(*GetConfig())
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	srcDialect, err := dialectFor(c.Convert.SourceLanguage, "")
	if err != nil {
		return err
	}
	destDialect, err := dialectFor(c.Convert.DestLanguage, "")
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := log.Logger.With().Str("run_id", runID).Logger()

	translator, closeTranslator, err := buildTranslator(cmd.Context(), &c, srcDialect, destDialect, runID)
	if err != nil {
		return err
	}
	defer closeTranslator()

	prompts, err := usecase.NewPromptBuilder(srcDialect, destDialect, c.Convert.Libraries)
	if err != nil {
		return err
	}

	walker := fs.NewWalker(c.Convert.Includes, c.Convert.Excludes, srcDialect.Extensions)
	convertUC := usecase.NewConvertUseCase(srcDialect, destDialect, translator, walker, prompts, c.Convert.Concurrency).
		WithLogger(logger).
		WithRunID(runID).
		WithDryRun(convertDryRun).
		WithProgress(newProgress("Translating"))

	fmt.Printf("Converting %s (%s) to %s (%s) with %s\n",
		src, srcDialect.Language.Title(), dest, destDialect.Language.Title(), translator.ModelName())

	result, err := convertUC.Convert(cmd.Context(), src, dest)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	printConvertResult(result, convertDryRun)
	return nil
}

// applyConvertFlags overlays command-line flags on a copy of the config.
func applyConvertFlags(c config.Config) config.Config {
	if convertSrcLang != "" {
		c.Convert.SourceLanguage = convertSrcLang
	}
	if convertDestLang != "" {
		c.Convert.DestLanguage = convertDestLang
	}
	if convertModel != "" {
		c.LLM.Model = convertModel
	}
	if convertProvider != "" {
		c.LLM.Provider = convertProvider
	}
	if convertConcurrency > 0 {
		c.Convert.Concurrency = convertConcurrency
	}
	if len(convertExcludes) > 0 {
		c.Convert.Excludes = append(append([]string{}, c.Convert.Excludes...), convertExcludes...)
	}
	if convertNoCache {
		c.Cache.Enabled = false
	}
	if convertDryRun {
		c.LLM.Provider = "mock"
		c.Cache.Enabled = false
	}
	return c
}

// buildTranslator wires the provider with retries, transcripts and the
// response cache, outermost last. The returned func releases the cache.
func buildTranslator(ctx context.Context, c *config.Config, src, dest lang.Dialect, runID string) (port.Translator, func(), error) {
	timeout := time.Duration(c.LLM.TimeoutSeconds) * time.Second
	noop := func() {}

	var provider port.Translator
	var err error
	switch c.LLM.Provider {
	case "openai":
		provider, err = llm.NewOpenAITranslator(c.LLM.APIKeyEnv, c.LLM.Model, c.LLM.BaseURL, timeout)
	case "deepseek":
		provider, err = llm.NewDeepSeekTranslator(c.LLM.APIKeyEnv, c.LLM.Model, c.LLM.BaseURL, timeout)
	case "ollama":
		provider = llm.NewOllamaTranslator(c.LLM.Model, c.LLM.BaseURL, timeout)
	case "gemini":
		provider, err = llm.NewGeminiTranslator(ctx, c.LLM.APIKeyEnv, c.LLM.Model)
	case "mock":
		return llm.NewMockTranslator(dest.FenceTag()), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create %s client: %w", c.LLM.Provider, err)
	}

	var t port.Translator = llm.NewRetryTranslator(provider, c.LLM.MaxRetries).
		WithLogger(log.Logger.With().Str("provider", c.LLM.Provider).Logger())

	if c.Logging.TranscriptDir != "" {
		t = llm.NewTranscriptTranslator(t, resolvePath(c.Logging.TranscriptDir), c.LLM.Name, src.FenceTag())
	}

	if !c.Cache.Enabled {
		return t, noop, nil
	}

	st, err := openStore(c.Cache.Path)
	if err != nil {
		return nil, noop, err
	}
	cached, err := cache.NewCachingTranslator(t, st, c.Cache.MemoryEntries)
	if err != nil {
		st.Close()
		return nil, noop, err
	}
	return cached.WithRunID(runID), func() { st.Close() }, nil
}

// newProgress returns a progress callback that lazily creates a bar once
// the total is known.
func newProgress(label string) func(done, total int) {
	var bar *progressbar.ProgressBar
	var mu sync.Mutex
	var startTime time.Time
	last := 0

	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+label+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		// Callbacks may arrive out of order.
		if done <= last {
			return
		}
		last = done
		bar.Set(done)

		elapsed := time.Since(startTime)
		rate := float64(done) / elapsed.Seconds()
		if rate > 0 {
			eta := time.Duration(float64(total-done)/rate) * time.Second
			bar.Describe(fmt.Sprintf("[cyan]%s[reset] ETA: %s", label, formatDuration(eta)))
		}
	}
}

func printConvertResult(result *usecase.ConvertResult, dryRun bool) {
	fmt.Printf("\nConversion complete (run %s):\n", result.RunID)
	fmt.Printf("  Files converted:  %d\n", result.FilesConverted)
	fmt.Printf("  Files skipped:    %d\n", result.FilesSkipped)
	fmt.Printf("  Units translated: %d\n", result.UnitsTranslated)
	if result.CacheHits > 0 {
		fmt.Printf("  Cache hits:       %d\n", result.CacheHits)
	}

	verb := "Wrote"
	if dryRun {
		verb = "Would write"
	}
	for _, out := range result.Outputs {
		fmt.Printf("  %s %s\n", verb, out)
	}

	if len(result.Failures) > 0 {
		fmt.Printf("\nUnmatched replies (kept as comments):\n")
		for _, f := range result.Failures {
			fmt.Printf("  - %s\n", f)
		}
	}
	if len(result.Gaps) > 0 {
		fmt.Printf("\nMethods without a type in the same file:\n")
		for _, g := range result.Gaps {
			fmt.Printf("  - %s\n", g)
		}
	}
	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
