package types

import "strings"

// Severity is a coarse-grained risk level for a finding.
type Severity string

const (
	SevLow  Severity = "low"
	SevMed  Severity = "medium"
	SevHigh Severity = "high"
)

// Rank orders severities; unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SevLow:
		return 1
	case SevMed:
		return 2
	case SevHigh:
		return 3
	}
	return 0
}

// ParseSeverity accepts low|medium|high (and "med") case-insensitively.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SevLow, true
	case "medium", "med":
		return SevMed, true
	case "high":
		return SevHigh, true
	}
	return "", false
}

// Category groups rules by the kind of problem they report.
type Category string

const (
	// CatSecret covers sensitive values such as passwords, keys and tokens.
	CatSecret Category = "secret"
	// CatComment covers outdated or misleading comments.
	CatComment Category = "comment"
	// CatMisconfig covers structured key/value checks on YAML and JSON.
	CatMisconfig Category = "misconfiguration"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{CatSecret, CatComment, CatMisconfig}
}

// ParseCategory accepts a known category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Categories() {
		if c == k {
			return k, true
		}
	}
	return "", false
}

// Finding describes one match of a rule against a specific line of a file.
type Finding struct {
	Path        string   `json:"path"`
	Line        int      `json:"line"`
	Column      int      `json:"column,omitempty"` // 1-based byte column (0 if unknown)
	Match       string   `json:"match,omitempty"`  // matched portion (may be redacted)
	Text        string   `json:"text,omitempty"`   // trimmed offending line (may be redacted)
	Rule        string   `json:"rule"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
}
