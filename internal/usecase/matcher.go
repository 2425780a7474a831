package usecase

import (
	"strings"

	"codeport/internal/domain"
	"codeport/internal/port"
)

// claimSet records destination items already placed in the output file.
// One set lives for the duration of a single Assemble call.
type claimSet map[string]bool

// match is the code resolved from one candidate block.
type match struct {
	code    string
	imports []string
	keys    []string
}

// nameMatches compares a destination item name with a requested symbol,
// ignoring case and underscores and accepting a "new" constructor prefix.
func nameMatches(symbol, itemName string) bool {
	if itemName == "" || symbol == "" {
		return false
	}
	if itemName == symbol {
		return true
	}
	want := normalizeName(symbol)
	got := normalizeName(itemName)
	return got == want || got == "new"+want
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

// matchBlock resolves the code in one parsed reply block that answers unit.
// Nothing is claimed unless the block resolves.
func matchBlock(p port.DeclParser, block string, unit domain.TranslationUnit, claimed claimSet) (match, bool, error) {
	if strings.TrimSpace(block) == "" {
		return match{}, false, nil
	}

	parsed, err := p.Parse(block)
	if err != nil {
		return match{}, false, err
	}

	targets := append([]string{unit.SymbolName}, unit.Members...)
	emitReceivers := !unit.Kind.IsCallable()

	local := make(map[string]bool)
	taken := func(item domain.Item) bool {
		return claimed[item.Key()] || local[item.Key()]
	}

	decls := parsed.Declarations()
	var picked []domain.Item

	for _, item := range decls {
		if taken(item) {
			continue
		}

		if nestedIn(item, picked) {
			local[item.Key()] = true
			continue
		}

		switch {
		case matchesAny(targets, item.Name):
			local[item.Key()] = true
			picked = append(picked, item)

		case item.Receiver != "" && nameMatches(unit.SymbolName, item.Receiver):
			local[item.Key()] = true
			if emitReceivers {
				picked = append(picked, item)
			}
		}
	}

	if len(picked) == 0 {
		var candidates []domain.Item
		for _, item := range decls {
			if taken(item) || !item.Kind.IsCallable() || item.Name == "main" {
				continue
			}
			candidates = append(candidates, item)
		}
		if len(candidates) == 1 {
			local[candidates[0].Key()] = true
			picked = candidates
		}
	}

	if len(picked) == 0 {
		return match{}, false, nil
	}

	sources := make([]string, 0, len(picked))
	for _, item := range picked {
		sources = append(sources, item.Source)
	}

	keys := make([]string, 0, len(local))
	for key := range local {
		keys = append(keys, key)
	}

	return match{
		code:    strings.Join(sources, "\n\n"),
		imports: parsed.Imports(),
		keys:    keys,
	}, true, nil
}

func matchesAny(targets []string, name string) bool {
	for _, target := range targets {
		if nameMatches(target, name) {
			return true
		}
	}
	return false
}

// nestedIn reports whether item sits inside an already picked impl block
// or class and would be emitted twice.
func nestedIn(item domain.Item, picked []domain.Item) bool {
	if item.Receiver == "" {
		return false
	}
	for _, c := range picked {
		owns := (c.Kind == domain.KindImpl && c.Receiver == item.Receiver) ||
			(c.Kind.IsType() && c.Name == item.Receiver)
		if owns && strings.Contains(c.Source, item.Source) {
			return true
		}
	}
	return false
}
