// Package ignore reads .confscanignore files: one doublestar glob per line,
// '#' comments, a trailing '/' meaning "this directory and everything in it".
// Patterns without a '/' match the base name at any depth.
package ignore

import (
	"bufio"
	"os"
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up in each directory target.
const FileName = ".confscanignore"

// Matcher holds compiled ignore patterns. The zero value matches nothing.
type Matcher struct {
	patterns []string
}

// Load reads patterns from the file at p. A missing file yields an empty
// Matcher together with the error so callers can ignore it.
func Load(p string) (Matcher, error) {
	var m Matcher
	f, err := os.Open(p)
	if err != nil {
		return m, err
	}
	defer func() { _ = f.Close() }()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m.Add(sc.Text())
	}
	return m, sc.Err()
}

// Add appends one pattern line; blanks and comments are skipped.
func (m *Matcher) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	line = strings.TrimPrefix(line, "./")
	if strings.HasSuffix(line, "/") {
		line += "**"
	}
	if !strings.Contains(strings.TrimSuffix(line, "/**"), "/") {
		line = "**/" + line
	}
	if !doublestar.ValidatePattern(line) {
		return
	}
	m.patterns = append(m.patterns, line)
}

// Len returns the number of usable patterns.
func (m Matcher) Len() int { return len(m.patterns) }

// Match reports whether rel (slash- or OS-separated, relative to the ignore
// file's directory) is ignored.
func (m Matcher) Match(rel string) bool {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
