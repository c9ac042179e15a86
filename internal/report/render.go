// Package report renders findings as text, JSON or SARIF and implements the
// baseline and fail-on policies applied after a scan.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/redactyl/confscan/internal/types"
)

// TextOptions control WriteText.
type TextOptions struct {
	// Verbose appends the offending line to each finding.
	Verbose bool
	// Color styles the rule tag by severity.
	Color bool
}

// Summary is the footer printed after text output.
type Summary struct {
	Findings     int
	FilesScanned int
	Skipped      int
	Baselined    int
	Duration     time.Duration
}

// WriteText prints one line per finding in the order given:
//
//	<file>:<line>: [<rule>]
//
// followed by " <text>" when opts.Verbose is set.
func WriteText(w io.Writer, findings []types.Finding, opts TextOptions) error {
	var styles map[types.Severity]lipgloss.Style
	if opts.Color {
		r := lipgloss.NewRenderer(w)
		styles = map[types.Severity]lipgloss.Style{
			types.SevHigh: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			types.SevMed:  r.NewStyle().Foreground(lipgloss.Color("11")),
			types.SevLow:  r.NewStyle().Foreground(lipgloss.Color("6")),
		}
	}
	for _, f := range findings {
		tag := "[" + f.Rule + "]"
		if st, ok := styles[f.Severity]; ok {
			tag = st.Render(tag)
		}
		line := fmt.Sprintf("%s:%d: %s", f.Path, f.Line, tag)
		if opts.Verbose && f.Text != "" {
			line += " " + f.Text
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary prints "N finding(s) in M file(s), K skipped".
func WriteSummary(w io.Writer, s Summary) error {
	msg := fmt.Sprintf("%d finding(s) in %d file(s), %d skipped", s.Findings, s.FilesScanned, s.Skipped)
	if s.Baselined > 0 {
		msg += fmt.Sprintf(", %d baselined", s.Baselined)
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

// WriteJSON writes findings as an indented JSON array; no findings is "[]".
func WriteJSON(w io.Writer, findings []types.Finding) error {
	if findings == nil {
		findings = []types.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}
