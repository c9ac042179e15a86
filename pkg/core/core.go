package core

import (
	"context"

	"github.com/redactyl/confscan/internal/engine"
	"github.com/redactyl/confscan/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Config = engine.Config
type RuleOptions = engine.RuleOptions
type Result = engine.Result
type SkippedFile = engine.SkippedFile
type Finding = types.Finding

// Scan runs the built-in rules and checks over cfg.Targets.
func Scan(cfg Config) ([]Finding, error) {
	res, err := ScanWithStats(context.Background(), cfg, RuleOptions{})
	if err != nil {
		return nil, err
	}
	return res.Findings, nil
}

// ScanWithStats builds the rule set from opts and scans cfg.Targets,
// returning findings with file counts and skip reasons.
func ScanWithStats(ctx context.Context, cfg Config, opts RuleOptions) (Result, error) {
	if opts.Logger == nil {
		opts.Logger = cfg.Logger
	}
	set, checks, err := engine.BuildRules(opts)
	if err != nil {
		return Result{}, err
	}
	return engine.Scan(ctx, cfg, set, checks)
}

// RuleIDs returns the IDs of the rules and checks opts would activate.
func RuleIDs(opts RuleOptions) ([]string, error) {
	set, checks, err := engine.BuildRules(opts)
	if err != nil {
		return nil, err
	}
	return append(set.IDs(), checks.IDs()...), nil
}
