// Package structured runs key/value checks against parsed YAML and JSON
// documents. It complements the line scanner for settings whose meaning
// depends on their position in the document rather than on the line text.
package structured

import (
	"errors"
	"fmt"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/redactyl/confscan/internal/ctxparse"
	"github.com/redactyl/confscan/internal/filetype"
	"github.com/redactyl/confscan/internal/rules"
	"github.com/redactyl/confscan/internal/scanner"
	"github.com/redactyl/confscan/internal/types"
)

// MalformedID is reported once for a document that fails to parse.
const MalformedID = "malformed-document"

// Check flags a scalar whose key path matches Key and whose value equals
// Equals. Key is a doublestar glob over the lower-cased, slash-joined path
// ("spec/containers/securitycontext/privileged"). A Check with an empty Key
// reports parse errors instead. A non-empty Tag also requires the scalar's
// resolved tag, so "true" in quotes is not a boolean.
type Check struct {
	ID          string
	Description string
	Severity    types.Severity
	Key         string
	Equals      string
	Tag         string
	FileTypes   []filetype.Type
	Source      string
}

func (c Check) appliesTo(t filetype.Type) bool {
	if len(c.FileTypes) == 0 {
		return t.Structured()
	}
	for _, ft := range c.FileTypes {
		if ft == t {
			return true
		}
	}
	return false
}

func (c Check) validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("check has empty id")
	}
	if c.Severity.Rank() == 0 {
		return fmt.Errorf("check %q has unknown severity %q", c.ID, c.Severity)
	}
	if c.Key != "" && !doublestar.ValidatePattern(c.Key) {
		return fmt.Errorf("check %q has invalid key pattern %q", c.ID, c.Key)
	}
	switch c.Tag {
	case "", ctxparse.TagStr, ctxparse.TagBool, ctxparse.TagInt, ctxparse.TagFloat, ctxparse.TagNull:
	default:
		return fmt.Errorf("check %q has unknown tag %q", c.ID, c.Tag)
	}
	return nil
}

// Builtin returns the default checks.
func Builtin() []Check {
	return []Check{
		{ID: MalformedID, Severity: types.SevMed, Description: "Document is not valid YAML or JSON"},
		{ID: "api-version-v1", Severity: types.SevLow, Key: "api_version", Equals: "v1", Description: "api_version is still pinned to v1"},
		{ID: "debug-enabled", Severity: types.SevMed, Key: "debug", Equals: "true", Tag: ctxparse.TagBool, Description: "Debug mode is enabled"},
		{ID: "tls-verify-disabled", Severity: types.SevHigh, Key: "**/{insecure_skip_verify,insecureskipverify}", Equals: "true", Tag: ctxparse.TagBool, Description: "TLS certificate verification is skipped"},
		{ID: "ssl-verify-disabled", Severity: types.SevHigh, Key: "**/{verify_ssl,ssl_verify,tls_verify}", Equals: "false", Tag: ctxparse.TagBool, Description: "SSL/TLS verification is turned off"},
		{ID: "privileged-container", Severity: types.SevHigh, Key: "**/privileged", Equals: "true", Tag: ctxparse.TagBool, Description: "Container runs privileged"},
	}
}

// Compile converts rules-file check definitions. Severity defaults to medium
// and file types default to YAML and JSON.
func Compile(defs []rules.CheckDef, source string) ([]Check, error) {
	out := make([]Check, 0, len(defs))
	for _, d := range defs {
		c := Check{
			ID:          strings.TrimSpace(d.ID),
			Description: d.Description,
			Severity:    types.SevMed,
			Key:         strings.ToLower(strings.TrimSpace(d.Key)),
			Equals:      d.Equals,
			Source:      source,
		}
		if d.Severity != "" {
			sev, ok := types.ParseSeverity(d.Severity)
			if !ok {
				return nil, fmt.Errorf("%s: check %q: unknown severity %q", source, d.ID, d.Severity)
			}
			c.Severity = sev
		}
		if c.Key == "" {
			return nil, fmt.Errorf("%s: check %q: empty key", source, d.ID)
		}
		for _, s := range d.FileTypes {
			ft, err := filetype.Parse(s)
			if err != nil || !ft.Structured() {
				return nil, fmt.Errorf("%s: check %q: file type %q is not yaml or json", source, d.ID, s)
			}
			c.FileTypes = append(c.FileTypes, ft)
		}
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Runner holds an immutable, ordered list of checks with unique IDs.
type Runner struct {
	checks []Check
}

// New validates cs and returns a Runner preserving their order.
func New(cs ...Check) (*Runner, error) {
	seen := map[string]bool{}
	r := &Runner{checks: make([]Check, 0, len(cs))}
	for _, c := range cs {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate check id %q", c.ID)
		}
		seen[c.ID] = true
		c.Key = strings.ToLower(c.Key)
		r.checks = append(r.checks, c)
	}
	return r, nil
}

// Len returns the number of checks; a nil Runner is empty.
func (r *Runner) Len() int {
	if r == nil {
		return 0
	}
	return len(r.checks)
}

// Checks returns a copy of the checks in order.
func (r *Runner) Checks() []Check {
	if r == nil {
		return nil
	}
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

// IDs returns check IDs in order.
func (r *Runner) IDs() []string {
	var out []string
	for _, c := range r.Checks() {
		out = append(out, c.ID)
	}
	return out
}

// Select applies enable/disable ID lists. An empty enable list keeps everything.
func (r *Runner) Select(enable, disable []string) *Runner {
	on, off := map[string]bool{}, map[string]bool{}
	for _, id := range enable {
		on[id] = true
	}
	for _, id := range disable {
		off[id] = true
	}
	out := &Runner{}
	for _, c := range r.Checks() {
		if len(on) > 0 && !on[c.ID] {
			continue
		}
		if off[c.ID] {
			continue
		}
		out.checks = append(out.checks, c)
	}
	return out
}

// Run parses data as t and returns findings ordered by document position,
// then check order. Inline suppression markers apply as for line rules.
func (r *Runner) Run(path string, t filetype.Type, data []byte) []types.Finding {
	if r.Len() == 0 || !t.Structured() {
		return nil
	}
	active := r.checks[:0:0]
	for _, c := range r.checks {
		if c.appliesTo(t) {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return nil
	}
	suppressed, ignoreFile := scanner.Suppressed(data)
	if ignoreFile {
		return nil
	}

	var fields []ctxparse.Field
	var err error
	if t == filetype.JSON {
		fields, err = ctxparse.JSONFields(data)
	} else {
		fields, err = ctxparse.YAMLFields(data)
	}

	lines := strings.Split(string(data), "\n")
	lineText := func(n int) string {
		if n < 1 || n > len(lines) {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(lines[n-1], "\ufeff"))
	}

	var out []types.Finding
	for _, f := range fields {
		if suppressed[f.Line] {
			continue
		}
		key := strings.ToLower(strings.Join(f.Path, "/"))
		for _, c := range active {
			if c.Key == "" {
				continue
			}
			if ok, _ := doublestar.Match(c.Key, key); !ok {
				continue
			}
			if c.Tag != "" && f.Tag != c.Tag {
				continue
			}
			if !strings.EqualFold(strings.TrimSpace(f.Value), c.Equals) {
				continue
			}
			out = append(out, newFinding(path, f.Line, lineText(f.Line), f.Value, c))
		}
	}

	var pe *ctxparse.ParseError
	if errors.As(err, &pe) && !suppressed[pe.Line] {
		for _, c := range active {
			if c.Key == "" {
				f := newFinding(path, pe.Line, lineText(pe.Line), "", c)
				f.Description = fmt.Sprintf("%s: %v", c.Description, pe.Err)
				out = append(out, f)
			}
		}
	}
	return out
}

func newFinding(path string, line int, text, match string, c Check) types.Finding {
	return types.Finding{
		Path:        path,
		Line:        line,
		Match:       match,
		Text:        text,
		Rule:        c.ID,
		Category:    types.CatMisconfig,
		Severity:    c.Severity,
		Description: c.Description,
	}
}
