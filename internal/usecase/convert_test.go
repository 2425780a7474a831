package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"codeport/internal/adapter/fs"
	"codeport/internal/domain"
)

const counterRust = `use std::fmt;

pub struct Counter {
    count: i32,
}

impl Counter {
    pub fn increment(&mut self) {
        self.count += 1;
    }
}

pub fn helper() {
    println!("hi");
}

#[cfg(test)]
mod tests {
    use super::*;

    #[test]
    fn it_works() {
        helper();
    }
}
`

// fakeTranslator answers from a fixed table. The reply for "Counter" is held
// back until "helper" has been answered, so completion order differs from
// submission order.
type fakeTranslator struct {
	replies map[string]string
	fail    map[string]error

	mu       sync.Mutex
	calls    []string
	gate     chan struct{}
	gateOnce sync.Once
}

func newFakeTranslator(replies map[string]string) *fakeTranslator {
	return &fakeTranslator{replies: replies, gate: make(chan struct{})}
}

func (f *fakeTranslator) CallChat(ctx context.Context, messages []domain.Message, unit domain.TranslationUnit) (domain.ChatResult, error) {
	if unit.SymbolName == "Counter" {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return domain.ChatResult{}, ctx.Err()
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, unit.SymbolName)
	f.mu.Unlock()

	if unit.SymbolName == "helper" {
		defer f.gateOnce.Do(func() { close(f.gate) })
	}

	if err, ok := f.fail[unit.SymbolName]; ok {
		return domain.ChatResult{}, err
	}
	return domain.ChatResult{Text: f.replies[unit.SymbolName], Unit: unit, Model: "fake"}, nil
}

func (f *fakeTranslator) ModelName() string { return "fake" }

func goFence(code string) string {
	return "```go\n" + code + "\n```\n"
}

func counterReplies() map[string]string {
	return map[string]string{
		"Counter":  goFence("type Counter struct{ count int }\n\nfunc (c *Counter) Increment() { c.count++ }"),
		"helper":   goFence("import \"fmt\"\n\nfunc helper() { fmt.Println(\"hi\") }"),
		"it_works": goFence("import \"testing\"\n\nfunc TestItWorks(t *testing.T) { helper() }"),
	}
}

func newRustToGo(t *testing.T, tr *fakeTranslator) *ConvertUseCase {
	t.Helper()
	src, dest := dialects(t, domain.LanguageRust, domain.LanguageGo)
	prompts, err := NewPromptBuilder(src, dest, nil)
	require.NoError(t, err)

	walker := fs.NewWalker(nil, []string{"**/mod.rs"}, src.Extensions)
	return NewConvertUseCase(src, dest, tr, walker, prompts, 4).WithLogger(zerolog.Nop())
}

func writeSource(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, fs.WriteFile(path, content))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestConvertDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	srcRoot := t.TempDir()
	destRoot := t.TempDir()
	writeSource(t, srcRoot, "src/lib.rs", counterRust)
	writeSource(t, srcRoot, "src/mod.rs", "pub mod lib;\n")
	writeSource(t, srcRoot, "src/broken.rs", "fn broken( {\n")

	var mu sync.Mutex
	var progress []int

	tr := newFakeTranslator(counterReplies())
	uc := newRustToGo(t, tr).WithProgress(func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, done)
		assert.Equal(t, 3, total)
	})

	res, err := uc.Convert(context.Background(), srcRoot, destRoot)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1, res.FilesConverted)
	assert.Equal(t, 1, res.FilesSkipped)
	assert.Equal(t, 3, res.UnitsTranslated)
	assert.Empty(t, res.Failures)
	assert.Len(t, progress, 3)

	require.Len(t, res.Errors, 1)
	var perr *domain.ParseError
	require.ErrorAs(t, res.Errors[0], &perr)
	assert.Equal(t, domain.LanguageRust, perr.Language)
	assert.Equal(t, "broken.rs", filepath.Base(perr.Path))

	lib := readFile(t, filepath.Join(destRoot, "src", "lib.go"))
	assert.Equal(t, "package src\n\n"+
		"import (\n\t\"fmt\"\n)\n\n"+
		"type Counter struct{ count int }\n\n"+
		"func (c *Counter) Increment() { c.count++ }\n\n"+
		"func helper() { fmt.Println(\"hi\") }\n", lib)

	tests := readFile(t, filepath.Join(destRoot, "src", "lib_test.go"))
	assert.Equal(t, "package src\n\n"+
		"import (\n\t\"testing\"\n)\n\n"+
		"func TestItWorks(t *testing.T) { helper() }\n", tests)

	assert.NoFileExists(t, filepath.Join(destRoot, "src", "mod.go"))

	tr.mu.Lock()
	defer tr.mu.Unlock()
	assert.Less(t, indexOf(tr.calls, "helper"), indexOf(tr.calls, "Counter"))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestConvertSingleFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	srcRoot := t.TempDir()
	path := writeSource(t, srcRoot, "counter/lib.rs", counterRust)
	out := filepath.Join(t.TempDir(), "out.go")

	res, err := newRustToGo(t, newFakeTranslator(counterReplies())).Convert(context.Background(), path, out)
	require.NoError(t, err)
	assert.Equal(t, []string{out, filepath.Join(filepath.Dir(out), "out_test.go")}, res.Outputs)
	assert.Contains(t, readFile(t, out), "package counter\n")
}

func TestConvertSingleFileParseError(t *testing.T) {
	path := writeSource(t, t.TempDir(), "broken.rs", "fn broken( {\n")

	_, err := newRustToGo(t, newFakeTranslator(nil)).Convert(context.Background(), path, t.TempDir())
	var perr *domain.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, path, perr.Path)
}

func TestConvertTranslationFailureAborts(t *testing.T) {
	defer goleak.VerifyNone(t)

	srcRoot := t.TempDir()
	destRoot := t.TempDir()
	writeSource(t, srcRoot, "lib.rs", counterRust)

	boom := errors.New("quota exceeded")
	tr := newFakeTranslator(counterReplies())
	tr.fail = map[string]error{"it_works": boom}

	_, err := newRustToGo(t, tr).Convert(context.Background(), srcRoot, destRoot)
	require.ErrorIs(t, err, boom)
	assert.NoFileExists(t, filepath.Join(destRoot, "lib.go"))
}

func TestConvertDryRunWritesNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	srcRoot := t.TempDir()
	destRoot := t.TempDir()
	writeSource(t, srcRoot, "lib.rs", counterRust)

	res, err := newRustToGo(t, newFakeTranslator(counterReplies())).WithDryRun(true).Convert(context.Background(), srcRoot, destRoot)
	require.NoError(t, err)
	assert.Len(t, res.Outputs, 2)
	assert.NoFileExists(t, filepath.Join(destRoot, "lib.go"))
}

func TestConvertUsesGivenRunID(t *testing.T) {
	srcRoot := t.TempDir()
	writeSource(t, srcRoot, "lib.rs", "pub fn helper() {}\n")

	res, err := newRustToGo(t, newFakeTranslator(counterReplies())).
		WithRunID("run-42").
		WithDryRun(true).
		Convert(context.Background(), srcRoot, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "run-42", res.RunID)
	assert.Equal(t, 1, res.UnitsTranslated)
}

func TestTestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "lib_test.go"), testPath(filepath.Join("a", "lib.go")))
}
