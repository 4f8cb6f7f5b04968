package objects

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Matcher reports whether a key is selected by a pattern.
type Matcher func(key string) bool

// compilePattern turns a user pattern into a Matcher. The pattern is matched
// as a suffix: "file.csv" becomes "*file.csv", so it selects
// "2022-01-01-file.csv" but not "file.csv.bak". An empty pattern selects
// every key. No separators are declared, so "*" also spans "/".
func compilePattern(pattern string) (Matcher, error) {
	if pattern == "" {
		return func(string) bool { return true }, nil
	}

	g, err := glob.Compile("*" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidInput, pattern, err)
	}
	return g.Match, nil
}

// Match reports whether key is selected by pattern under the same rules the
// lister applies. Besides "*", "?" and character classes, "{a,b}"
// alternation and "\" escapes are honoured.
func Match(key, pattern string) (bool, error) {
	m, err := compilePattern(pattern)
	if err != nil {
		return false, err
	}
	return m(key), nil
}
