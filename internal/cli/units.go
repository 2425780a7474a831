package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"codeport/internal/domain"
	"codeport/internal/usecase"
)

var (
	unitsLang     string
	unitsDestLang string
)

var unitsCmd = &cobra.Command{
	Use:   "units FILE",
	Short: "Print the translation units a file would be sent as",
	Long: `Group the declarations of FILE into translation units, fusing every
type with its methods, and print them as YAML in request order.

Examples:
  codeport units src/lib.rs
  codeport units app.py --lang python --dest-lang typescript`,
	Args: cobra.ExactArgs(1),
	RunE: runUnits,
}

func init() {
	rootCmd.AddCommand(unitsCmd)
	unitsCmd.Flags().StringVarP(&unitsLang, "lang", "l", "", "source language (default from extension)")
	unitsCmd.Flags().StringVar(&unitsDestLang, "dest-lang", "", "destination language (default from config)")
}

type unitsFile struct {
	Path  string                   `yaml:"path"`
	Units []domain.TranslationUnit `yaml:"units"`
	Tests []domain.TranslationUnit `yaml:"tests,omitempty"`
	Gaps  []string                 `yaml:"gaps,omitempty"`
}

func runUnits(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := dialectFor(unitsLang, path)
	if err != nil {
		return err
	}

	destName := unitsDestLang
	if destName == "" {
		destName = GetConfig().Convert.DestLanguage
	}
	dest, err := dialectFor(destName, "")
	if err != nil {
		return err
	}

	production, tests, err := readAndSplit(src, path)
	if err != nil {
		return err
	}

	base := filepath.Base(path)
	destFile := strings.TrimSuffix(base, filepath.Ext(base)) + dest.Extension()
	out := unitsFile{Path: path}

	regions := []struct {
		code string
		dest string
		into *[]domain.TranslationUnit
	}{
		{production, destFile, &out.Units},
		{tests, strings.TrimSuffix(destFile, dest.Extension()) + "_test" + dest.Extension(), &out.Tests},
	}
	for _, r := range regions {
		items, err := parseRegion(src, path, r.code)
		if err != nil {
			return err
		}
		e := usecase.NewEnumerator(domain.ParseResult{Items: items}, path, r.dest)
		*r.into = e.Units()
		for _, gap := range e.Gaps() {
			out.Gaps = append(out.Gaps, gap.String())
		}
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}
