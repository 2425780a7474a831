package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeport/internal/adapter/lang"
	"codeport/internal/domain"
)

func goAssembler(t *testing.T) *Assembler {
	t.Helper()
	d, err := lang.For(domain.LanguageGo)
	require.NoError(t, err)
	return NewAssembler(d)
}

func reply(code string) string {
	return "Here is the code:\n\n```go\n" + code + "\n```\n\nLet me know if you need anything else."
}

func chat(symbol string, kind domain.Kind, text string) domain.ChatResult {
	return domain.ChatResult{
		Text: text,
		Unit: domain.TranslationUnit{SymbolName: symbol, Kind: kind, Source: "fn " + symbol + "() {}"},
	}
}

func TestNameMatches(t *testing.T) {
	tests := []struct {
		symbol, item string
		want         bool
	}{
		{"widget", "NewWidget", true},
		{"do_thing", "doThing", true},
		{"Counter", "Counter", true},
		{"counter", "new_counter", true},
		{"counter", "Counters", false},
		{"counter", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.symbol+"/"+tt.item, func(t *testing.T) {
			assert.Equal(t, tt.want, nameMatches(tt.symbol, tt.item))
		})
	}
}

func TestAssembleMergesImportsAndKeepsRequestOrder(t *testing.T) {
	results := []domain.ChatResult{
		chat("widget", domain.KindFunction, reply("import \"fmt\"\n\nfunc NewWidget() { fmt.Println() }")),
		chat("do_thing", domain.KindFunction, reply("import (\n\t\"os\"\n\t\"fmt\"\n)\n\nfunc doThing() { _ = os.Args }")),
	}

	file := goAssembler(t).Assemble("widgets", results)
	require.Empty(t, file.Failures)

	want := "package widgets\n\n" +
		"import (\n\t\"fmt\"\n\t\"os\"\n)\n\n" +
		"func NewWidget() { fmt.Println() }\n\n" +
		"func doThing() { _ = os.Args }\n"
	assert.Equal(t, want, file.String())
}

func TestAssembleWithoutImportsOmitsBlock(t *testing.T) {
	file := goAssembler(t).Assemble("x", []domain.ChatResult{
		chat("run", domain.KindFunction, reply("func Run() {}")),
	})
	assert.Equal(t, "package x\n\nfunc Run() {}\n", file.String())
}

func TestAssembleSingleCandidateFallback(t *testing.T) {
	file := goAssembler(t).Assemble("x", []domain.ChatResult{
		chat("compute_total", domain.KindFunction, reply("func main() {}\n\nfunc sumAll() int { return 0 }")),
	})
	require.Empty(t, file.Failures)
	assert.Equal(t, []string{"func sumAll() int { return 0 }"}, file.Blocks)
}

func TestAssembleAmbiguousFallsBackToComments(t *testing.T) {
	code := "func first() {}\n\nfunc second() {}"
	file := goAssembler(t).Assemble("x", []domain.ChatResult{
		chat("compute_total", domain.KindFunction, reply(code)),
	})

	require.Len(t, file.Failures, 1)
	assert.Equal(t, "compute_total", file.Failures[0].Unit.SymbolName)
	assert.Equal(t, 1, file.Failures[0].Candidates)
	assert.Equal(t, []string{
		"/*\nfn compute_total() {}\n*/",
		"/*\n" + code + "\n*/",
	}, file.Blocks)
}

func TestAssembleNoBlocksFallsBackToComments(t *testing.T) {
	file := goAssembler(t).Assemble("x", []domain.ChatResult{
		chat("a", domain.KindFunction, "I cannot help with that."),
	})
	require.Len(t, file.Failures, 1)
	assert.Equal(t, 0, file.Failures[0].Candidates)
	assert.Equal(t, []string{"/*\nfn a() {}\n*/"}, file.Blocks)
}

func TestAssembleFirstResolvingBlockWins(t *testing.T) {
	text := "```go\nfunc unrelated() {}\nfunc other() {}\n```\n\n```go\nfunc Parse() {}\n```\n\n```go\nfunc Parse() { panic(1) }\n```\n"
	file := goAssembler(t).Assemble("x", []domain.ChatResult{chat("parse", domain.KindFunction, text)})
	assert.Equal(t, []string{"func Parse() {}"}, file.Blocks)
}

func TestAssembleSkipsUnparseableBlock(t *testing.T) {
	text := "```go\nfunc Parse( {\n```\n\n```go\nfunc Parse() {}\n```\n"
	file := goAssembler(t).Assemble("x", []domain.ChatResult{chat("parse", domain.KindFunction, text)})
	assert.Equal(t, []string{"func Parse() {}"}, file.Blocks)
}

func TestAssembleClaimedItemsAreNotRepeated(t *testing.T) {
	shared := "type Config struct{}\n\nfunc Load() Config { return Config{} }"
	results := []domain.ChatResult{
		chat("config", domain.KindStruct, reply(shared)),
		chat("load", domain.KindFunction, reply(shared)),
	}

	file := goAssembler(t).Assemble("x", results)

	out := file.String()
	assert.Equal(t, 1, strings.Count(out, "type Config struct{}"))
	assert.Equal(t, 1, strings.Count(out, "func Load()"))
}

func TestAssembleFusedUnitEmitsReceiverMethods(t *testing.T) {
	code := `type Counter struct {
	count int
}

func NewCounter() *Counter { return &Counter{} }

func (c *Counter) Increment() { c.count++ }

func (c *Counter) Reset() { c.count = 0 }

func main() {}`
	unit := domain.TranslationUnit{SymbolName: "Counter", Kind: domain.KindStruct, Members: []string{"increment"}}
	file := goAssembler(t).Assemble("x", []domain.ChatResult{{Text: reply(code), Unit: unit}})

	require.Len(t, file.Blocks, 1)
	block := file.Blocks[0]
	assert.Contains(t, block, "type Counter struct")
	assert.Contains(t, block, "func NewCounter()")
	assert.Contains(t, block, "func (c *Counter) Increment()")
	assert.Contains(t, block, "func (c *Counter) Reset()")
	assert.NotContains(t, block, "func main")
}

func TestAssembleMethodUnitEmitsOnlyItself(t *testing.T) {
	code := "type Counter struct{}\n\nfunc (c *Counter) Value() int { return 0 }\n\nfunc (c *Counter) Helper() {}"
	unit := domain.TranslationUnit{SymbolName: "value", Kind: domain.KindMethod}
	file := goAssembler(t).Assemble("x", []domain.ChatResult{{Text: reply(code), Unit: unit}})
	assert.Equal(t, []string{"func (c *Counter) Value() int { return 0 }"}, file.Blocks)
}

func TestAssembleRustImplMethodsNotDuplicated(t *testing.T) {
	d, err := lang.For(domain.LanguageRust)
	require.NoError(t, err)

	code := "use std::fmt;\n\npub struct Counter {\n    count: i32,\n}\n\nimpl Counter {\n    pub fn increment(&mut self) {\n        self.count += 1;\n    }\n}\n"
	unit := domain.TranslationUnit{SymbolName: "Counter", Kind: domain.KindStruct, Members: []string{"Increment"}}
	text := "```rust\n" + code + "```\n"

	file := NewAssembler(d).Assemble("counter", []domain.ChatResult{{Text: text, Unit: unit}})
	require.Empty(t, file.Failures)

	out := file.String()
	assert.True(t, strings.HasPrefix(out, "//! module counter\n\nuse fmt;\n\n"))
	assert.Equal(t, 1, strings.Count(out, "pub fn increment"))
	assert.Equal(t, 1, strings.Count(out, "impl Counter {"))
}

func TestAssembleFunctionUnitClaimsReceiverMatches(t *testing.T) {
	code := "func Counter() int { return 0 }\n\nfunc (c *Counter) Reset() {}"
	unit := domain.TranslationUnit{SymbolName: "counter", Kind: domain.KindFunction}
	first := chat("counter", domain.KindFunction, reply(code))
	first.Unit = unit
	second := chat("reset", domain.KindMethod, reply(code))

	file := goAssembler(t).Assemble("x", []domain.ChatResult{first, second})

	require.Len(t, file.Blocks, 3)
	assert.Equal(t, "func Counter() int { return 0 }", file.Blocks[0])
	require.Len(t, file.Failures, 1)
	assert.Equal(t, "reset", file.Failures[0].Unit.SymbolName)
}

func TestAssembleTypeUnitKeepsTypedConstBlock(t *testing.T) {
	code := "type Color int\n\nconst (\n\tRed Color = iota\n\tGreen\n)"
	unit := domain.TranslationUnit{SymbolName: "Color", Kind: domain.KindEnum}
	file := goAssembler(t).Assemble("x", []domain.ChatResult{{Text: reply(code), Unit: unit}})

	require.Empty(t, file.Failures)
	assert.Equal(t, "package x\n\n"+code+"\n", file.String())
}

func TestAssembleNonMatchingTypeFallsBackToComments(t *testing.T) {
	file := goAssembler(t).Assemble("x", []domain.ChatResult{
		chat("run", domain.KindFunction, reply("type Other struct{}")),
	})

	require.Len(t, file.Failures, 1)
	assert.Equal(t, 1, file.Failures[0].Candidates)
	assert.Equal(t, []string{
		"/*\nfn run() {}\n*/",
		"/*\ntype Other struct{}\n*/",
	}, file.Blocks)
}
