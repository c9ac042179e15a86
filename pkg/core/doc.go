// Package core provides a small, stable facade over confscan's internal
// engine for programs that embed the scanner. It re-exports a narrow API
// surface so callers do not import internal packages.
//
// Example:
//
//	cfg := core.Config{Targets: []string{"deploy"}, Recursive: true, DefaultExcludes: true}
//	findings, err := core.Scan(cfg)
//	if err != nil { /* handle */ }
//	_ = core.MarshalFindings(os.Stdout, findings)
package core
