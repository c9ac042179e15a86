package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/redactyl/confscan/internal/types"
)

// Rule is a named pattern tested against single lines of text. Rules are
// built once and never mutated afterwards.
type Rule struct {
	ID          string
	Description string
	Category    types.Category
	Severity    types.Severity
	Pattern     *regexp.Regexp
	// SecretGroup selects the submatch reported as the matched value (0 = whole match).
	SecretGroup int
	// Allow suppresses a match whose value also matches it (placeholders, env references).
	Allow *regexp.Regexp
	// Keywords are lower-case substrings; when set, one must occur in the line.
	Keywords []string
	// MinEntropy, when > 0, is the minimum Shannon entropy of the matched value.
	MinEntropy float64
	// Validate, when set, must accept the matched value.
	Validate func(string) bool
	// Source records where the rule came from: "builtin", "gitleaks" or a file path.
	Source string
}

// Match reports the first acceptable match of r in line, returning the
// matched value and its 1-based byte column.
func (r Rule) Match(line string) (string, int, bool) {
	if len(r.Keywords) > 0 {
		lower := strings.ToLower(line)
		hit := false
		for _, k := range r.Keywords {
			if strings.Contains(lower, k) {
				hit = true
				break
			}
		}
		if !hit {
			return "", 0, false
		}
	}
	for _, loc := range r.Pattern.FindAllStringSubmatchIndex(line, -1) {
		start, end := loc[0], loc[1]
		if g := r.SecretGroup; g > 0 && 2*g+1 < len(loc) && loc[2*g] >= 0 {
			start, end = loc[2*g], loc[2*g+1]
		}
		m := line[start:end]
		if r.Allow != nil && r.Allow.MatchString(m) {
			continue
		}
		if r.MinEntropy > 0 && Entropy(m) < r.MinEntropy {
			continue
		}
		if r.Validate != nil && !r.Validate(m) {
			continue
		}
		return m, start + 1, true
	}
	return "", 0, false
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("rule has empty id")
	}
	if r.Pattern == nil {
		return fmt.Errorf("rule %q has no pattern", r.ID)
	}
	if _, ok := types.ParseCategory(string(r.Category)); !ok {
		return fmt.Errorf("rule %q has unknown category %q", r.ID, r.Category)
	}
	if r.Severity.Rank() == 0 {
		return fmt.Errorf("rule %q has unknown severity %q", r.ID, r.Severity)
	}
	if r.SecretGroup < 0 || r.SecretGroup > r.Pattern.NumSubexp() {
		return fmt.Errorf("rule %q secret group %d out of range", r.ID, r.SecretGroup)
	}
	return nil
}

// Set is an immutable, ordered collection of rules with unique IDs.
type Set struct {
	rules []Rule
	byID  map[string]int
}

// New validates rs and returns a Set preserving their order.
func New(rs ...Rule) (*Set, error) {
	s := &Set{rules: make([]Rule, 0, len(rs)), byID: make(map[string]int, len(rs))}
	for _, r := range rs {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		s.byID[r.ID] = len(s.rules)
		s.rules = append(s.rules, r)
	}
	return s, nil
}

// Len returns the number of rules; a nil Set is empty.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Rules returns a copy of the rules in order.
func (s *Set) Rules() []Rule {
	if s == nil {
		return nil
	}
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// IDs returns rule IDs in order.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.ID
	}
	return out
}

// Lookup finds a rule by ID.
func (s *Set) Lookup(id string) (Rule, bool) {
	if s == nil {
		return Rule{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return Rule{}, false
	}
	return s.rules[i], true
}

// Filter returns a new Set with the rules for which keep returns true.
func (s *Set) Filter(keep func(Rule) bool) *Set {
	out := &Set{byID: map[string]int{}}
	if s == nil {
		return out
	}
	for _, r := range s.rules {
		if keep(r) {
			out.byID[r.ID] = len(out.rules)
			out.rules = append(out.rules, r)
		}
	}
	return out
}

// WithCategories keeps only rules in one of cats.
func (s *Set) WithCategories(cats ...types.Category) *Set {
	want := map[types.Category]bool{}
	for _, c := range cats {
		want[c] = true
	}
	return s.Filter(func(r Rule) bool { return want[r.Category] })
}

// Select applies enable/disable ID lists. An empty enable list keeps everything.
func (s *Set) Select(enable, disable []string) *Set {
	on := idSet(enable)
	off := idSet(disable)
	return s.Filter(func(r Rule) bool {
		if len(on) > 0 && !on[r.ID] {
			return false
		}
		return !off[r.ID]
	})
}

// Merge appends other after s; IDs must stay unique.
func (s *Set) Merge(other *Set) (*Set, error) {
	all := append(s.Rules(), other.Rules()...)
	return New(all...)
}

func idSet(ids []string) map[string]bool {
	m := map[string]bool{}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			m[id] = true
		}
	}
	return m
}

// SplitList splits a comma-separated list, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
