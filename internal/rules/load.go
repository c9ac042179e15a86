package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/redactyl/confscan/internal/types"
	"gopkg.in/yaml.v3"
)

// RuleDef is the on-disk shape of a line rule.
type RuleDef struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Severity    string   `yaml:"severity"`
	Pattern     string   `yaml:"pattern"`
	SecretGroup int      `yaml:"secret_group"`
	Allow       string   `yaml:"allow"`
	Keywords    []string `yaml:"keywords"`
	MinEntropy  float64  `yaml:"min_entropy"`
}

// CheckDef is the on-disk shape of a structured key/value check.
type CheckDef struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Severity    string   `yaml:"severity"`
	Key         string   `yaml:"key"`
	Equals      string   `yaml:"equals"`
	Tag         string   `yaml:"tag"`
	FileTypes   []string `yaml:"filetypes"`
}

// File is a rules file: line rules plus structured checks.
type File struct {
	Rules  []RuleDef  `yaml:"rules"`
	Checks []CheckDef `yaml:"checks"`
}

// LoadFile reads and parses a YAML rules file.
func LoadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("error reading rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("error parsing rules file %s: %w", path, err)
	}
	return f, nil
}

// Compile turns a definition into a Rule. Severity defaults to medium.
func (d RuleDef) Compile(source string) (Rule, error) {
	r := Rule{
		ID:          strings.TrimSpace(d.ID),
		Description: d.Description,
		SecretGroup: d.SecretGroup,
		MinEntropy:  d.MinEntropy,
		Source:      source,
	}
	cat, ok := types.ParseCategory(d.Category)
	if !ok {
		return r, fmt.Errorf("rule %q: unknown category %q", d.ID, d.Category)
	}
	r.Category = cat
	r.Severity = types.SevMed
	if d.Severity != "" {
		sev, ok := types.ParseSeverity(d.Severity)
		if !ok {
			return r, fmt.Errorf("rule %q: unknown severity %q", d.ID, d.Severity)
		}
		r.Severity = sev
	}
	if d.Pattern == "" {
		return r, fmt.Errorf("rule %q: empty pattern", d.ID)
	}
	re, err := regexp.Compile(d.Pattern)
	if err != nil {
		return r, fmt.Errorf("rule %q: invalid pattern: %w", d.ID, err)
	}
	r.Pattern = re
	if d.Allow != "" {
		allow, err := regexp.Compile(d.Allow)
		if err != nil {
			return r, fmt.Errorf("rule %q: invalid allow pattern: %w", d.ID, err)
		}
		r.Allow = allow
	}
	for _, k := range d.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			r.Keywords = append(r.Keywords, k)
		}
	}
	return r, r.validate()
}

// CompileAll compiles every rule definition in f, tagging them with source.
func (f File) CompileAll(source string) ([]Rule, error) {
	out := make([]Rule, 0, len(f.Rules))
	for _, d := range f.Rules {
		r, err := d.Compile(source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		out = append(out, r)
	}
	return out, nil
}
