package engine

import (
	"github.com/redactyl/confscan/internal/logging"
	"github.com/redactyl/confscan/internal/rules"
	"github.com/redactyl/confscan/internal/structured"
	"github.com/redactyl/confscan/internal/types"
	"go.uber.org/zap"
)

// RuleOptions select the active line rules and structured checks.
type RuleOptions struct {
	// RulesFile is an optional YAML rules file appended after the built-ins.
	RulesFile      string
	NoDefaultRules bool
	Gitleaks       bool
	Enable         []string
	Disable        []string
	// FindSecrets keeps only rules in the secret category.
	FindSecrets bool
	Logger      *zap.SugaredLogger
}

// BuildRules assembles the immutable rule set and check runner in source
// order: built-ins, rules file, gitleaks pack. It returns a ConfigError when
// a source is invalid or nothing remains active after filtering.
func BuildRules(opts RuleOptions) (*rules.Set, *structured.Runner, error) {
	log := logging.OrNop(opts.Logger)
	var rs []rules.Rule
	var cs []structured.Check
	if !opts.NoDefaultRules {
		rs = append(rs, rules.Builtin()...)
		cs = append(cs, structured.Builtin()...)
	}
	if opts.RulesFile != "" {
		f, err := rules.LoadFile(opts.RulesFile)
		if err != nil {
			return nil, nil, &ConfigError{Msg: "invalid rules file", Err: err}
		}
		extra, err := f.CompileAll(opts.RulesFile)
		if err != nil {
			return nil, nil, &ConfigError{Msg: "invalid rules file", Err: err}
		}
		checks, err := structured.Compile(f.Checks, opts.RulesFile)
		if err != nil {
			return nil, nil, &ConfigError{Msg: "invalid rules file", Err: err}
		}
		log.Debugw("loaded rules file", "path", opts.RulesFile, "rules", len(extra), "checks", len(checks))
		rs = append(rs, extra...)
		cs = append(cs, checks...)
	}
	set, err := rules.New(rs...)
	if err != nil {
		return nil, nil, &ConfigError{Msg: "invalid rule set", Err: err}
	}
	if opts.Gitleaks {
		gl, err := rules.Gitleaks()
		if err != nil {
			return nil, nil, &ConfigError{Msg: "gitleaks rules", Err: err}
		}
		pack, err := rules.New(gl...)
		if err != nil {
			return nil, nil, &ConfigError{Msg: "gitleaks rules", Err: err}
		}
		if set, err = set.Merge(pack); err != nil {
			return nil, nil, &ConfigError{Msg: "gitleaks rules", Err: err}
		}
		log.Debugw("loaded gitleaks rules", "rules", pack.Len())
	}
	runner, err := structured.New(cs...)
	if err != nil {
		return nil, nil, &ConfigError{Msg: "invalid rule set", Err: err}
	}

	for _, id := range append(append([]string{}, opts.Enable...), opts.Disable...) {
		if _, ok := set.Lookup(id); ok {
			continue
		}
		if !contains(runner.IDs(), id) {
			log.Warnw("unknown rule id", "id", id)
		}
	}
	set = set.Select(opts.Enable, opts.Disable)
	runner = runner.Select(opts.Enable, opts.Disable)

	if opts.FindSecrets {
		set = set.WithCategories(types.CatSecret)
		runner = nil
	}
	if set.Len()+runner.Len() == 0 {
		return nil, nil, &ConfigError{Msg: "no rules active"}
	}
	return set, runner, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
