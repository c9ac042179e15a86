package scanner

import "strings"

// Inline markers recognized in scanned files.
const (
	MarkerIgnore         = "confscan:ignore"
	MarkerIgnoreNextLine = "confscan:ignore-next-line"
	MarkerIgnoreStart    = "confscan:ignore-start"
	MarkerIgnoreEnd      = "confscan:ignore-end"
	MarkerIgnoreFile     = "confscan:ignore-file"
)

// suppressions tracks inline ignore state across the lines of one file.
type suppressions struct {
	region   bool
	skipNext bool
	file     bool
}

// skip reports whether line t must not be matched. Marker lines for regions
// and next-line are never matched themselves.
func (s *suppressions) skip(t string) bool {
	if !strings.Contains(t, "confscan:") {
		if s.skipNext {
			s.skipNext = false
			return true
		}
		return s.region
	}
	switch {
	case strings.Contains(t, MarkerIgnoreFile):
		s.file = true
		return true
	case strings.Contains(t, MarkerIgnoreStart):
		s.region = true
		return true
	case strings.Contains(t, MarkerIgnoreEnd):
		s.region = false
		return true
	case s.region:
		return true
	case strings.Contains(t, MarkerIgnoreNextLine):
		s.skipNext = true
		return true
	case s.skipNext:
		s.skipNext = false
		return true
	case strings.Contains(t, MarkerIgnore):
		return true
	}
	return false
}

// Suppressed replays the inline markers over data and returns the 1-based
// lines that must not be reported, and whether the whole file is ignored.
func Suppressed(data []byte) (map[int]bool, bool) {
	var s suppressions
	lines := map[int]bool{}
	for i, t := range strings.Split(string(data), "\n") {
		if s.skip(t) {
			lines[i+1] = true
		}
	}
	return lines, s.file
}
