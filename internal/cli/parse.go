package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"codeport/internal/adapter/fs"
	"codeport/internal/adapter/lang"
	"codeport/internal/domain"
)

var parseLang string

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the declarations found in a source file",
	Long: `Split FILE into production code and its test region and print the
declarations of each as YAML.

Examples:
  codeport parse src/lib.rs
  codeport parse app.py --lang python`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseLang, "lang", "l", "", "source language (default from extension)")
}

// parsedFile is the YAML document printed by the parse command.
type parsedFile struct {
	Path     string        `yaml:"path"`
	Language string        `yaml:"language"`
	Items    []domain.Item `yaml:"items"`
	Tests    []domain.Item `yaml:"tests,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	d, err := dialectFor(parseLang, path)
	if err != nil {
		return err
	}

	production, tests, err := readAndSplit(d, path)
	if err != nil {
		return err
	}

	out := parsedFile{Path: path, Language: string(d.Language)}
	if out.Items, err = parseRegion(d, path, production); err != nil {
		return err
	}
	if out.Tests, err = parseRegion(d, path, tests); err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}

func readAndSplit(d lang.Dialect, path string) (production, tests string, err error) {
	content, err := fs.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file: %w", err)
	}
	production, tests, err = d.Splitter.Split(content)
	if err != nil {
		return "", "", fmt.Errorf("failed to split %s: %w", path, err)
	}
	return production, tests, nil
}

func parseRegion(d lang.Dialect, path, code string) ([]domain.Item, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	res, err := d.Parser.Parse(code)
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return res.Items, nil
}
