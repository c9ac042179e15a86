package engine

import (
	"bytes"
	"context"
	"os"
	"sort"
	"time"

	"github.com/redactyl/confscan/internal/filetype"
	"github.com/redactyl/confscan/internal/logging"
	"github.com/redactyl/confscan/internal/report"
	"github.com/redactyl/confscan/internal/rules"
	"github.com/redactyl/confscan/internal/scanner"
	"github.com/redactyl/confscan/internal/structured"
	"github.com/redactyl/confscan/internal/types"
	"go.uber.org/zap"
)

// DefaultMaxBytes is the directory expansion size limit used by the CLI.
const DefaultMaxBytes = 1 << 20

// Config controls target selection and scanning.
type Config struct {
	Targets   []string
	Recursive bool
	// FileType restricts directory expansion to one type and forces the
	// type of file targets. Auto detects by name.
	FileType        filetype.Type
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	DefaultExcludes bool
	Redact          bool
	MaxLineBytes    int
	// Baseline, when set, removes accepted findings from the result.
	Baseline *report.Baseline
	Logger   *zap.SugaredLogger
}

// Result contains findings and basic scan statistics.
type Result struct {
	Findings     []types.Finding
	FilesScanned int
	Skipped      []SkippedFile
	Baselined    int
	Duration     time.Duration
}

// Scan resolves cfg.Targets and scans each file with set and checks, one at
// a time. Per-file failures are logged and recorded in Result.Skipped. ctx
// is checked between files; on cancellation the partial result is returned
// with ctx.Err().
func Scan(ctx context.Context, cfg Config, set *rules.Set, checks *structured.Runner) (Result, error) {
	var result Result
	if set.Len()+checks.Len() == 0 {
		return result, &ConfigError{Msg: "no rules active"}
	}
	log := logging.OrNop(cfg.Logger)
	started := time.Now()

	targets, skipped, err := Resolve(cfg)
	if err != nil {
		return result, err
	}
	result.Skipped = skipped
	log.Debugw("resolved targets", "files", len(targets), "rules", set.Len(), "checks", checks.Len())

	scnr := scanner.New(set, scanner.Options{Redact: cfg.Redact, MaxLineBytes: cfg.MaxLineBytes})
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(started)
			return result, err
		}
		fs, err := scanTarget(scnr, checks, t, cfg.Redact)
		if err != nil {
			ferr := &FileReadError{Path: t.Display, Err: err}
			log.Warnw("skipping file", "path", t.Display, "error", err)
			result.Skipped = append(result.Skipped, SkippedFile{Path: t.Display, Reason: err.Error(), Err: ferr})
			continue
		}
		log.Debugw("scanned", "path", t.Display, "type", t.Type, "findings", len(fs))
		result.FilesScanned++
		result.Findings = append(result.Findings, fs...)
	}

	if cfg.Baseline != nil {
		before := len(result.Findings)
		result.Findings = report.FilterNewFindings(result.Findings, *cfg.Baseline)
		result.Baselined = before - len(result.Findings)
	}
	result.Duration = time.Since(started)
	return result, nil
}

// scanTarget runs the line scanner and, for YAML and JSON, the structured
// checks. Findings are merged by line; line rules precede checks on the
// same line.
func scanTarget(scnr *scanner.Scanner, checks *structured.Runner, t Target, redact bool) ([]types.Finding, error) {
	if !t.Type.Structured() || checks.Len() == 0 {
		return scnr.ScanFile(t.Path, t.Display)
	}
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return nil, err
	}
	fs, err := scnr.ScanReader(t.Display, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	cs := checks.Run(t.Display, t.Type, data)
	if len(cs) == 0 {
		return fs, nil
	}
	if redact {
		masked := map[int]string{}
		for _, f := range fs {
			if f.Category == types.CatSecret {
				masked[f.Line] = f.Text
			}
		}
		for i := range cs {
			if txt, ok := masked[cs[i].Line]; ok {
				cs[i].Text = txt
			}
		}
	}
	out := append(fs, cs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out, nil
}
