package parser

import (
	"strings"

	"codeport/internal/domain"
)

const rustTestMarker = "#[cfg(test)]"

// RustSplitter separates an inline `#[cfg(test)]` module from production code.
// The test module is assumed to be a single top-level block closed by a `}`
// at column zero.
type RustSplitter struct{}

// Split returns production lines and the body of the test module.
func (RustSplitter) Split(source string) (string, string, error) {
	lines := strings.Split(source, "\n")

	var production, tests []string
	inTests := false
	regions := 0

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if strings.HasPrefix(line, rustTestMarker) {
			if inTests {
				return "", "", domain.ErrMultipleTestRegions
			}
			i++
			if i < len(lines) && strings.HasSuffix(strings.TrimSpace(lines[i]), ";") {
				// out-of-line module: nothing to capture
				continue
			}
			regions++
			if regions > 1 {
				return "", "", domain.ErrMultipleTestRegions
			}
			inTests = true
			continue
		}

		if inTests {
			if strings.HasPrefix(line, "}") {
				inTests = false
				continue
			}
			tests = append(tests, line)
			continue
		}

		production = append(production, line)
	}

	return strings.Join(production, "\n"), strings.Join(tests, "\n"), nil
}

// NoopSplitter is used by languages that keep tests in separate files.
type NoopSplitter struct{}

// Split returns the source unchanged with no tests.
func (NoopSplitter) Split(source string) (string, string, error) {
	return source, "", nil
}
