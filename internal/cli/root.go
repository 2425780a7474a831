package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"codeport/config"
	"codeport/internal/adapter/lang"
	"codeport/internal/domain"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "codeport",
	Short: "codeport - Translate source code between languages with an LLM",
	Long: `codeport splits source files into declarations, asks a language model to
translate each type (together with its methods) or function, and reassembles
the replies into destination files next to a converted test file.

Example usage:
  codeport convert ./src ./out                  # Rust to Go with defaults
  codeport convert lib.py lib.ts --src-lang python --dest-lang typescript
  codeport units src/lib.rs                     # Show what would be sent
  codeport cache stats                          # Inspect the response cache`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		// A missing .env is fine; keys may already be in the environment.
		_ = godotenv.Load(filepath.Join(rootDir, ".env"))

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		level, err := zerolog.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
		}
		zerolog.SetGlobalLevel(level)

		return nil
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./codeport.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// resolvePath makes relative config paths relative to the root directory.
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

// dialectFor returns the dialect named by name, or the one whose extension
// matches path when name is empty.
func dialectFor(name, path string) (lang.Dialect, error) {
	if name != "" {
		l, err := domain.ParseLanguage(name)
		if err != nil {
			return lang.Dialect{}, err
		}
		return lang.For(l)
	}

	for _, l := range domain.Languages {
		d, err := lang.For(l)
		if err != nil {
			return lang.Dialect{}, err
		}
		if d.Matches(path) {
			return d, nil
		}
	}
	return lang.Dialect{}, fmt.Errorf("%w: cannot infer language of %s, use --lang", domain.ErrUnsupportedLanguage, path)
}
