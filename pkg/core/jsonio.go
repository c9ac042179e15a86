package core

import (
	"encoding/json"
	"io"

	"github.com/redactyl/confscan/internal/report"
)

// MarshalFindings writes findings as the indented JSON array produced by
// `confscan --json`; no findings is "[]".
func MarshalFindings(w io.Writer, findings []Finding) error {
	return report.WriteJSON(w, findings)
}

// UnmarshalFindings decodes the output of MarshalFindings.
func UnmarshalFindings(r io.Reader) ([]Finding, error) {
	var fs []Finding
	if err := json.NewDecoder(r).Decode(&fs); err != nil {
		return nil, err
	}
	return fs, nil
}
