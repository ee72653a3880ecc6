// Package envfile parses the line-oriented key=value environment files
// used for per-job and default environments, with shell-like quoting
// and "${VAR}" substitution. The lookup order for substitution is keys
// defined earlier in the same file, then an optional outer map; single
// quotes disable substitution, double or absent quotes enable it.
//
// The resolution technique (scan the raw value, substitute variable
// references against an accumulated map) follows the same shape as
// config.Properties' resolve/resolveAll, generalized here to the
// file-local-then-outer lookup order and quote-controlled substitution
// this format requires.
package envfile

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"oss.nandlabs.io/regular/errutils"
)

var varRE = regexp.MustCompile(`\$\{([^}\x00=]+)\}`)

var errParseLine = errutils.NewCustomError("can't parse env file line: %q")
var errSubstitute = errutils.NewCustomError("can't substitute env variable: %q")

// Parse reads key=value lines from r into an ordered mapping. outer, if
// non-nil, is consulted for "${VAR}" references not satisfied by a
// preceding key in the same file. Blank lines and lines whose first
// non-space character is '#' are ignored. Every other line must contain
// '='; the key is everything before the first '=' with trailing
// whitespace stripped, the value is everything after with leading
// whitespace stripped.
func Parse(r io.Reader, outer map[string]string) (*Map, error) {
	m := &Map{values: make(map[string]string), order: nil}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, errParseLine.Err(line)
		}
		key := strings.TrimRight(line[:idx], " \t")
		rawValue := strings.TrimLeft(line[idx+1:], " \t")

		value, substitute := unquote(rawValue)
		if substitute {
			resolved, err := substituteVars(value, m.values, outer)
			if err != nil {
				return nil, err
			}
			value = resolved
		}

		m.Set(key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// unquote strips one matching pair of leading/trailing quote characters
// from value, if present, and reports whether the result should still
// undergo "${VAR}" substitution (true for double-quoted or unquoted
// values, false for single-quoted ones).
func unquote(value string) (string, bool) {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == '\'' && last == '\'' {
			return value[1 : len(value)-1], false
		}
		if first == '"' && last == '"' {
			return value[1 : len(value)-1], true
		}
	}
	return value, true
}

func substituteVars(value string, own, outer map[string]string) (string, error) {
	var missing string
	var hadMissing bool
	result := varRE.ReplaceAllStringFunc(value, func(match string) string {
		name := varRE.FindStringSubmatch(match)[1]
		if v, ok := own[name]; ok {
			return v
		}
		if outer != nil {
			if v, ok := outer[name]; ok {
				return v
			}
		}
		hadMissing = true
		missing = name
		return match
	})
	if hadMissing {
		return "", errSubstitute.Err(missing)
	}
	return result, nil
}

// Map is an ordered string-to-string mapping produced by Parse.
type Map struct {
	values map[string]string
	order  []string
}

// Set adds or overwrites key with value, preserving first-insertion
// order when iterating via Keys.
func (m *Map) Set(key, value string) {
	if _, exists := m.values[key]; !exists {
		m.order = append(m.order, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in the order they were first defined.
func (m *Map) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// ToMap returns a copy of the underlying key-value pairs.
func (m *Map) ToMap() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Merge returns a new map holding the entries of all maps, where an entry
// of a later map overrides the same key of an earlier one, matching the
// "later entries override earlier" composition
// rule used for outer-env ∪ defaults.env ∪ job.env.
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
