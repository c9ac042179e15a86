// Package scanner streams a single file against a rule set and emits one
// finding per matching (line, rule) pair.
package scanner

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/redactyl/confscan/internal/redact"
	"github.com/redactyl/confscan/internal/rules"
	"github.com/redactyl/confscan/internal/types"
)

const (
	// DefaultMaxLineBytes bounds a single line; longer lines fail the file.
	DefaultMaxLineBytes = 1 << 20
	sniffBytes          = 8 << 10
)

var (
	// ErrBinary is returned for content that is not text.
	ErrBinary = errors.New("binary content")
	// ErrLineTooLong is returned when a line exceeds the configured maximum.
	ErrLineTooLong = errors.New("line too long")
)

// Options tune a Scanner.
type Options struct {
	// Redact masks the matched value of secret findings in Match and Text.
	Redact bool
	// MaxLineBytes overrides DefaultMaxLineBytes when > 0.
	MaxLineBytes int
}

// Scanner tests each line of a file against an immutable rule set.
type Scanner struct {
	rules   []rules.Rule
	redact  bool
	maxLine int
}

// New returns a Scanner over set. The set is read-only for the Scanner's
// lifetime.
func New(set *rules.Set, opts Options) *Scanner {
	maxLine := opts.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	return &Scanner{rules: set.Rules(), redact: opts.Redact, maxLine: maxLine}
}

// ScanFile opens path and scans it. display is used as Finding.Path.
func (s *Scanner) ScanFile(path, display string) ([]types.Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return s.ScanReader(display, f)
}

// ScanReader sniffs r for binary content and then streams it line by line.
// Findings are ordered by line, then by rule order within the set.
func (s *Scanner) ScanReader(path string, r io.Reader) ([]types.Finding, error) {
	br := bufio.NewReaderSize(r, sniffBytes)
	head, err := br.Peek(sniffBytes)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	if looksBinary(head) {
		return nil, ErrBinary
	}

	sc := bufio.NewScanner(br)
	initial := 64 * 1024
	if initial > s.maxLine {
		initial = s.maxLine
	}
	sc.Buffer(make([]byte, 0, initial), s.maxLine)

	var out []types.Finding
	var sup suppressions
	line := 0
	for sc.Scan() {
		line++
		t := sc.Text()
		if line == 1 {
			t = strings.TrimPrefix(t, "\ufeff")
		}
		if sup.skip(t) {
			continue
		}
		start := len(out)
		var secrets []string
		for _, rule := range s.rules {
			m, col, ok := rule.Match(t)
			if !ok {
				continue
			}
			if rule.Category == types.CatSecret {
				secrets = append(secrets, m)
			}
			out = append(out, newFinding(path, line, col, t, m, rule))
		}
		if s.redact && len(secrets) > 0 {
			redactLine(out[start:], secrets)
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d exceeds %d bytes", ErrLineTooLong, line+1, s.maxLine)
		}
		return nil, err
	}
	if sup.file {
		return nil, nil
	}
	return out, nil
}

func newFinding(path string, line, col int, text, match string, r rules.Rule) types.Finding {
	return types.Finding{
		Path:        path,
		Line:        line,
		Column:      col,
		Match:       match,
		Text:        strings.TrimSpace(text),
		Rule:        r.ID,
		Category:    r.Category,
		Severity:    r.Severity,
		Description: r.Description,
	}
}

// redactLine masks every secret value found on a line in all findings for
// that line, so comment findings do not leak a secret through Text.
func redactLine(fs []types.Finding, secrets []string) {
	for i := range fs {
		for _, sec := range secrets {
			fs[i].Text = redact.Line(fs[i].Text, sec)
		}
		if fs[i].Category == types.CatSecret {
			fs[i].Match = redact.Mask(fs[i].Match)
		}
	}
}

// looksBinary reports NUL bytes or a sniffed type outside the text/plain family.
func looksBinary(head []byte) bool {
	if len(head) == 0 {
		return false
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	for m := mimetype.Detect(head); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return false
		}
	}
	return true
}
