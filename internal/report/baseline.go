package report

import (
	"encoding/json"
	"fmt"
	"os"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/redactyl/confscan/internal/types"
)

// DefaultBaselineFile is picked up when present and no --baseline is given.
const DefaultBaselineFile = "confscan.baseline.json"

// Baseline records fingerprints of accepted findings.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

// NewBaseline fingerprints findings.
func NewBaseline(findings []types.Finding) Baseline {
	b := Baseline{Items: make(map[string]bool, len(findings))}
	for _, f := range findings {
		b.Items[Fingerprint(f)] = true
	}
	return b
}

// LoadBaseline reads a baseline written by SaveBaseline.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("error parsing baseline %s: %w", path, err)
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

// SaveBaseline writes the fingerprints of findings to path.
func SaveBaseline(path string, findings []types.Finding) error {
	buf, err := json.MarshalIndent(NewBaseline(findings), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(buf, '\n'), 0644)
}

// Contains reports whether f was accepted in the baseline.
func (b Baseline) Contains(f types.Finding) bool {
	return b.Items[Fingerprint(f)]
}

// FilterNewFindings drops findings recorded in base.
func FilterNewFindings(findings []types.Finding, base Baseline) []types.Finding {
	var out []types.Finding
	for _, f := range findings {
		if !base.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// Fingerprint identifies a finding independently of its line number, so
// edits elsewhere in the file do not invalidate a baseline.
func Fingerprint(f types.Finding) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(f.Path+"|"+f.Rule+"|"+f.Text))
}

// ShouldFail reports whether any finding is at or above threshold. An empty
// threshold never fails.
func ShouldFail(findings []types.Finding, threshold types.Severity) bool {
	th := threshold.Rank()
	if th == 0 {
		return false
	}
	for _, f := range findings {
		if f.Severity.Rank() >= th {
			return true
		}
	}
	return false
}
