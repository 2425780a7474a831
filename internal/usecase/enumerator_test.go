package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeport/internal/adapter/parser"
	"codeport/internal/domain"
)

func TestEnumeratorGoCounterFusesIntoOneUnit(t *testing.T) {
	src := `package counter

type Counter struct {
	count int
}

func (c *Counter) Increment() { c.count++ }

func (c Counter) Value() int { return c.count }
`
	res, err := parser.NewGoParser().Parse(src)
	require.NoError(t, err)
	require.Len(t, res.Declarations(), 3)

	units := NewEnumerator(res, "counter.go", "counter.rs").Units()
	require.Len(t, units, 1)

	u := units[0]
	assert.Equal(t, "Counter", u.SymbolName)
	assert.Equal(t, domain.KindStruct, u.Kind)
	assert.Equal(t, []string{"Increment", "Value"}, u.Members)
	assert.Equal(t, 1, strings.Count(u.Source, "type Counter struct"))
	assert.Equal(t, 1, strings.Count(u.Source, "func (c *Counter) Increment()"))
	assert.Equal(t, 1, strings.Count(u.Source, "func (c Counter) Value()"))
	assert.Equal(t, "counter.go", u.SourcePath)
	assert.Equal(t, "counter.rs", u.DestFilename)
}

func TestEnumeratorRustTemplate(t *testing.T) {
	items := []domain.Item{
		{Name: "Counter", Kind: domain.KindStruct, Source: "struct Counter {}"},
		{Name: "Counter", Kind: domain.KindImpl, Source: "impl Counter {\n    fn a() {}\n    fn b() {}\n}", Receiver: "Counter"},
		{Name: "a", Kind: domain.KindMethod, Source: "    fn a() {}", Receiver: "Counter"},
		{Name: "b", Kind: domain.KindMethod, Source: "    fn b() {}", Receiver: "Counter"},
		{Name: domain.ImportsName, Kind: domain.KindImports, Source: "fmt"},
	}

	units := NewEnumerator(domain.ParseResult{Items: items}, "", "").Units()
	require.Len(t, units, 1)
	assert.Equal(t, "struct Counter {}\n\nimpl Counter {\n\n    fn a() {}\n\n    fn b() {}\n\n}", units[0].Source)
}

func TestEnumeratorPrefersInherentImplHeader(t *testing.T) {
	src := `use std::fmt;

pub struct Counter {
    count: i32,
}

impl fmt::Display for Counter {
    fn fmt(&self, f: &mut fmt::Formatter) -> fmt::Result {
        write!(f, "{}", self.count)
    }
}

impl Counter {
    pub fn value(&self) -> i32 {
        self.count
    }
}

pub fn helper() {}

pub enum Mode { A, B }
`
	res, err := parser.NewRustParser().Parse(src)
	require.NoError(t, err)

	units := NewEnumerator(res, "", "").Units()
	require.Len(t, units, 3)

	assert.Equal(t, "Mode", units[0].SymbolName)
	assert.Equal(t, "Counter", units[1].SymbolName)
	assert.Equal(t, "helper", units[2].SymbolName)

	fused := units[1].Source
	inherent := strings.Index(fused, "impl Counter {")
	display := strings.Index(fused, "impl fmt::Display for Counter {")
	require.True(t, inherent > 0)
	require.True(t, display > inherent)
	assert.Equal(t, []string{"value", "fmt"}, units[1].Members)

	for i, u := range units {
		assert.Equal(t, i, u.Seq)
	}
}

func TestEnumeratorOwnersSortedByName(t *testing.T) {
	items := []domain.Item{
		{Name: "Zeta", Kind: domain.KindStruct, Source: "type Zeta struct{}"},
		{Name: "Alpha", Kind: domain.KindStruct, Source: "type Alpha struct{}"},
		{Name: "Plain", Kind: domain.KindStruct, Source: "type Plain struct{}"},
		{Name: "Z", Kind: domain.KindMethod, Source: "func (Zeta) Z() {}", Receiver: "Zeta"},
		{Name: "A", Kind: domain.KindMethod, Source: "func (Alpha) A() {}", Receiver: "Alpha"},
	}

	units := NewEnumerator(domain.ParseResult{Items: items}, "", "").Units()
	var names []string
	for _, u := range units {
		names = append(names, u.SymbolName)
	}
	assert.Equal(t, []string{"Plain", "Alpha", "Zeta"}, names)
}

func TestEnumeratorClassMethodsNotRepeated(t *testing.T) {
	src := `class Counter:
    def inc(self):
        pass

    def value(self):
        return 1
`
	res, err := parser.NewPythonParser().Parse(src)
	require.NoError(t, err)

	units := NewEnumerator(res, "", "").Units()
	require.Len(t, units, 1)
	assert.Equal(t, strings.TrimRight(src, "\n"), units[0].Source)
	assert.Equal(t, []string{"inc", "value"}, units[0].Members)
}

func TestEnumeratorGroupingGap(t *testing.T) {
	items := []domain.Item{
		{Name: "Display for Remote", Kind: domain.KindImpl, Source: "impl Display for Remote {\n    fn fmt() {}\n}", Receiver: "Remote"},
		{Name: "fmt", Kind: domain.KindMethod, Source: "    fn fmt() {}", Receiver: "Remote"},
		{Name: "free", Kind: domain.KindFunction, Source: "fn free() {}"},
	}

	e := NewEnumerator(domain.ParseResult{Items: items}, "", "")
	units := e.Units()

	require.Len(t, units, 2)
	assert.Equal(t, domain.KindImpl, units[0].Kind)
	assert.Equal(t, "Remote", units[0].SymbolName)
	assert.Equal(t, []string{"fmt"}, units[0].Members)
	assert.Equal(t, "free", units[1].SymbolName)

	require.Len(t, e.Gaps(), 1)
	assert.Equal(t, "Remote", e.Gaps()[0].Owner)
}

func TestEnumeratorGapMethodsEmittedStandalone(t *testing.T) {
	src := "package x\n\nfunc (r *Remote) Close() error { return nil }\n"
	res, err := parser.NewGoParser().Parse(src)
	require.NoError(t, err)

	e := NewEnumerator(res, "", "")
	units := e.Units()
	require.Len(t, units, 1)
	assert.Equal(t, "Close", units[0].SymbolName)
	assert.Equal(t, domain.KindMethod, units[0].Kind)
	require.Len(t, e.Gaps(), 1)
	assert.Equal(t, []string{"Close"}, e.Gaps()[0].Members)
}

func TestEnumeratorSkipsImportsAndIsExhausted(t *testing.T) {
	items := []domain.Item{
		{Name: domain.ImportsName, Kind: domain.KindImports, Source: "a,b"},
		{Name: "run", Kind: domain.KindFunction, Source: "fn run() {}"},
	}
	e := NewEnumerator(domain.ParseResult{Items: items}, "", "")

	u, ok := e.Next()
	require.True(t, ok)
	assert.Equal(t, "run", u.SymbolName)

	_, ok = e.Next()
	assert.False(t, ok)
	_, ok = e.Next()
	assert.False(t, ok)
}

func TestEnumeratorImplHeaderKeepsDocComment(t *testing.T) {
	src := `pub struct Counter {
    n: u32,
}

/// Shows {n} items.
impl Counter {
    fn get(&self) -> u32 {
        self.n
    }
}
`
	res, err := parser.NewRustParser().Parse(src)
	require.NoError(t, err)

	units := NewEnumerator(res, "", "").Units()
	require.Len(t, units, 1)
	assert.Equal(t, "pub struct Counter {\n    n: u32,\n}\n\n"+
		"/// Shows {n} items.\nimpl Counter {\n\n"+
		"    fn get(&self) -> u32 {\n        self.n\n    }\n\n}", units[0].Source)
}

func TestEnumeratorKeepsAssociatedItems(t *testing.T) {
	impl := `impl Iterator for Counter {
    type Item = u32;
    const STEP: u32 = 1;

    fn next(&mut self) -> Option<u32> {
        self.n += Self::STEP;
        Some(self.n)
    }
}`
	src := "pub struct Counter {\n    n: u32,\n}\n\n" + impl + "\n"

	res, err := parser.NewRustParser().Parse(src)
	require.NoError(t, err)

	units := NewEnumerator(res, "", "").Units()
	require.Len(t, units, 1)
	assert.Equal(t, "pub struct Counter {\n    n: u32,\n}\n\n"+impl, units[0].Source)
	assert.Equal(t, []string{"next"}, units[0].Members)
}
