package usecase

import (
	"sort"
	"strings"

	"codeport/internal/domain"
)

const (
	phaseTypes = iota
	phaseOwners
	phaseLeftovers
	phaseDone
)

// owner collects the impl blocks and methods sharing one receiver.
type owner struct {
	name    string
	typeIdx int
	impls   []int
	members []int
}

// Enumerator turns a parse result into translation units. A type and every
// method declared on it become a single unit so the model sees them together.
// Units are produced lazily and the sequence cannot be restarted.
type Enumerator struct {
	items   []domain.Item
	claimed []bool
	parent  []int

	owners map[string]*owner
	order  []string

	path string
	dest string

	phase   int
	pos     int
	seq     int
	pending []domain.TranslationUnit
	gaps    []domain.GroupingGap
}

// NewEnumerator prepares units for the declarations of one source file.
func NewEnumerator(result domain.ParseResult, sourcePath, destFilename string) *Enumerator {
	e := &Enumerator{
		items:   result.Items,
		claimed: make([]bool, len(result.Items)),
		parent:  make([]int, len(result.Items)),
		owners:  make(map[string]*owner),
		path:    sourcePath,
		dest:    destFilename,
	}

	cur := -1
	for i, item := range e.items {
		e.parent[i] = -1

		switch {
		case item.Kind == domain.KindImports:
			e.claimed[i] = true
			cur = -1
			continue
		case item.Kind == domain.KindImpl:
			cur = i
		case item.Kind == domain.KindMethod && cur >= 0 && item.Receiver == e.items[cur].Receiver:
			e.parent[i] = cur
		default:
			cur = -1
		}

		if item.Receiver == "" {
			continue
		}
		o, ok := e.owners[item.Receiver]
		if !ok {
			o = &owner{name: item.Receiver, typeIdx: -1}
			e.owners[item.Receiver] = o
			e.order = append(e.order, item.Receiver)
		}
		if item.Kind == domain.KindImpl {
			o.impls = append(o.impls, i)
		} else {
			o.members = append(o.members, i)
		}
	}

	for i, item := range e.items {
		if !item.Kind.IsType() {
			continue
		}
		if o, ok := e.owners[item.Name]; ok && o.typeIdx < 0 {
			o.typeIdx = i
		}
	}

	sort.Strings(e.order)
	return e
}

// Next returns the next unit, or false once every declaration was emitted.
func (e *Enumerator) Next() (domain.TranslationUnit, bool) {
	for {
		switch e.phase {
		case phaseTypes:
			for e.pos < len(e.items) {
				i := e.pos
				e.pos++
				item := e.items[i]
				if e.claimed[i] || !item.Kind.IsType() {
					continue
				}
				if o, ok := e.owners[item.Name]; ok && o.typeIdx == i {
					continue
				}
				e.claimed[i] = true
				return e.emit(e.standalone(item)), true
			}
			e.phase, e.pos = phaseOwners, 0

		case phaseOwners:
			if len(e.pending) > 0 {
				unit := e.pending[0]
				e.pending = e.pending[1:]
				return e.emit(unit), true
			}
			if e.pos >= len(e.order) {
				e.phase, e.pos = phaseLeftovers, 0
				continue
			}
			o := e.owners[e.order[e.pos]]
			e.pos++
			if o.typeIdx >= 0 {
				e.pending = append(e.pending, e.fuse(o))
			} else {
				e.pending = append(e.pending, e.orphan(o)...)
			}

		case phaseLeftovers:
			for e.pos < len(e.items) {
				i := e.pos
				e.pos++
				if e.claimed[i] {
					continue
				}
				e.claimed[i] = true
				return e.emit(e.standalone(e.items[i])), true
			}
			e.phase = phaseDone

		default:
			return domain.TranslationUnit{}, false
		}
	}
}

// Units drains the enumerator.
func (e *Enumerator) Units() []domain.TranslationUnit {
	var units []domain.TranslationUnit
	for {
		unit, ok := e.Next()
		if !ok {
			return units
		}
		units = append(units, unit)
	}
}

// Gaps returns the owners whose type is not declared in the file. It is
// complete once Next has returned false.
func (e *Enumerator) Gaps() []domain.GroupingGap {
	return e.gaps
}

func (e *Enumerator) emit(unit domain.TranslationUnit) domain.TranslationUnit {
	unit.Seq = e.seq
	unit.SourcePath = e.path
	unit.DestFilename = e.dest
	e.seq++
	return unit
}

func (e *Enumerator) standalone(item domain.Item) domain.TranslationUnit {
	return domain.TranslationUnit{
		SymbolName: item.Name,
		Kind:       item.Kind,
		Source:     item.Source,
	}
}

// fuse merges an owner's type, impl blocks and methods into one unit.
func (e *Enumerator) fuse(o *owner) domain.TranslationUnit {
	typ := e.items[o.typeIdx]
	e.claimed[o.typeIdx] = true

	parts := []string{typ.Source}
	var members []string

	for _, k := range headerFirst(e.items, o.impls) {
		e.claimed[k] = true

		impl := e.items[k]
		var body []string
		for _, j := range o.members {
			if e.parent[j] != k || e.claimed[j] {
				continue
			}
			e.claimed[j] = true
			body = append(body, e.items[j].Source)
			members = append(members, e.items[j].Name)
		}

		header := impl.Header
		if header == "" {
			header = headerLine(impl.Source)
		}
		if len(body) == 0 || hasResidue(impl.Source, header, body) {
			parts = append(parts, impl.Source)
			continue
		}
		parts = append(parts, header+" {\n\n"+strings.Join(body, "\n\n")+"\n\n}")
	}

	for _, j := range o.members {
		if e.claimed[j] {
			continue
		}
		e.claimed[j] = true
		members = append(members, e.items[j].Name)
		if !strings.Contains(typ.Source, e.items[j].Source) {
			parts = append(parts, e.items[j].Source)
		}
	}

	return domain.TranslationUnit{
		SymbolName: typ.Name,
		Kind:       typ.Kind,
		Source:     strings.Join(parts, "\n\n"),
		Members:    members,
	}
}

// orphan handles an owner without a type in the file: impl blocks go out
// standalone with the methods they contain, loose methods are left over.
func (e *Enumerator) orphan(o *owner) []domain.TranslationUnit {
	gap := domain.GroupingGap{Owner: o.name}
	for _, j := range o.members {
		gap.Members = append(gap.Members, e.items[j].Name)
	}
	e.gaps = append(e.gaps, gap)

	var units []domain.TranslationUnit
	for _, k := range o.impls {
		e.claimed[k] = true

		var members []string
		for _, j := range o.members {
			if e.parent[j] == k && !e.claimed[j] {
				e.claimed[j] = true
				members = append(members, e.items[j].Name)
			}
		}

		units = append(units, domain.TranslationUnit{
			SymbolName: o.name,
			Kind:       domain.KindImpl,
			Source:     e.items[k].Source,
			Members:    members,
		})
	}
	return units
}

// headerFirst orders impl blocks with the preferred header first: the block
// not implementing a trait when there are several.
func headerFirst(items []domain.Item, impls []int) []int {
	if len(impls) < 2 {
		return impls
	}

	header := 0
	for n, k := range impls {
		if !strings.Contains(items[k].Name, " for ") {
			header = n
			break
		}
	}

	ordered := make([]int, 0, len(impls))
	ordered = append(ordered, impls[header])
	for n, k := range impls {
		if n != header {
			ordered = append(ordered, k)
		}
	}
	return ordered
}

// hasResidue reports whether the impl block holds text beyond its header and
// the given methods, such as associated types or consts. Such a block is sent
// as written.
func hasResidue(source, header string, methods []string) bool {
	rest := strings.Replace(source, header, "", 1)
	for _, m := range methods {
		rest = strings.Replace(rest, m, "", 1)
	}
	return strings.Trim(rest, " \t\r\n{}") != ""
}

// headerLine returns an impl block's text up to its opening brace.
func headerLine(source string) string {
	if idx := strings.Index(source, "{"); idx >= 0 {
		source = source[:idx]
	}
	return strings.TrimSpace(source)
}
