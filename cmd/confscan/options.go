package confscan

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/redactyl/confscan/internal/config"
	"github.com/redactyl/confscan/internal/engine"
	"github.com/redactyl/confscan/internal/filetype"
	"github.com/redactyl/confscan/internal/report"
	"github.com/redactyl/confscan/internal/rules"
	"github.com/redactyl/confscan/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// scanOptions is the effective configuration after merging CLI flags, the
// local config file and the global config file (in that precedence).
type scanOptions struct {
	Engine  engine.Config
	Rules   engine.RuleOptions
	NoColor bool
	FailOn  types.Severity

	baseline string
}

func resolveOptions(cmd *cobra.Command, targets []string, log *zap.SugaredLogger) (scanOptions, error) {
	var o scanOptions
	gcfg, lcfg, err := loadConfigs(targets, log)
	if err != nil {
		return o, err
	}

	ft, err := filetype.Parse(pickString(flagFileType, lcfg.FileType, gcfg.FileType))
	if err != nil {
		return o, &engine.ConfigError{Msg: "invalid --filetype", Err: err}
	}
	if failOn := pickString(flagFailOn, lcfg.FailOn, gcfg.FailOn); failOn != "" {
		sev, ok := types.ParseSeverity(failOn)
		if !ok {
			return o, &engine.ConfigError{Msg: "invalid --fail-on " + failOn + " (want low|medium|high)"}
		}
		o.FailOn = sev
	}
	maxBytes := pickInt64(changedInt64(cmd, "max-bytes", flagMaxBytes), lcfg.MaxBytes, gcfg.MaxBytes)
	if maxBytes == 0 {
		maxBytes = engine.DefaultMaxBytes
	}
	defaultExcludes := flagDefaultExcludes
	if !cmd.Flags().Changed("default-excludes") {
		defaultExcludes = pickBoolDefault(true, lcfg.DefaultExcludes, gcfg.DefaultExcludes)
	}

	o.Engine = engine.Config{
		Targets:         targets,
		Recursive:       pickBool(flagRecursive, lcfg.Recursive, gcfg.Recursive),
		FileType:        ft,
		IncludeGlobs:    pickString(flagInclude, lcfg.Include, gcfg.Include),
		ExcludeGlobs:    pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
		MaxBytes:        maxBytes,
		DefaultExcludes: defaultExcludes,
		Redact:          pickBool(flagRedact, lcfg.Redact, gcfg.Redact),
		Logger:          log,
	}
	o.Rules = engine.RuleOptions{
		RulesFile:      pickString(flagRules, lcfg.Rules, gcfg.Rules),
		NoDefaultRules: pickBool(flagNoDefaultRules, lcfg.NoDefaultRules, gcfg.NoDefaultRules),
		Gitleaks:       pickBool(flagGitleaksRules, lcfg.GitleaksRules, gcfg.GitleaksRules),
		Enable:         rules.SplitList(pickString(flagEnable, lcfg.Enable, gcfg.Enable)),
		Disable:        rules.SplitList(pickString(flagDisable, lcfg.Disable, gcfg.Disable)),
		FindSecrets:    pickBool(flagFindSecrets, lcfg.FindSecrets, gcfg.FindSecrets),
		Logger:         log,
	}
	o.NoColor = pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor)
	o.baseline = pickString(flagBaseline, lcfg.Baseline, gcfg.Baseline)
	return o, nil
}

// loadConfigs reads the global config and the local config found next to
// the first target. Missing files are not errors; malformed ones are.
func loadConfigs(targets []string, log *zap.SugaredLogger) (global, local config.FileConfig, err error) {
	if c, gerr := config.LoadGlobal(); gerr == nil {
		log.Debugw("loaded global config", "path", config.GlobalPath())
		global = c
	} else if !errors.Is(gerr, config.ErrNotFound) && config.GlobalPath() != "" {
		return global, local, &engine.ConfigError{Msg: "invalid global config", Err: gerr}
	}
	if len(targets) == 0 {
		return global, local, nil
	}
	dir := targets[0]
	if info, serr := os.Stat(dir); serr != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	if c, lerr := config.LoadLocal(dir); lerr == nil {
		log.Debugw("loaded local config", "dir", dir)
		local = c
	} else if !errors.Is(lerr, config.ErrNotFound) {
		return global, local, &engine.ConfigError{Msg: "invalid config", Err: lerr}
	}
	return global, local, nil
}

// loadBaseline applies an explicit baseline, or the default baseline file
// when it exists in the working directory.
func (o *scanOptions) loadBaseline() error {
	path := o.baseline
	if path == "" {
		if _, err := os.Stat(report.DefaultBaselineFile); err != nil {
			return nil
		}
		path = report.DefaultBaselineFile
	}
	b, err := report.LoadBaseline(path)
	if err != nil {
		return &engine.ConfigError{Msg: "invalid baseline", Err: err}
	}
	o.Engine.Baseline = &b
	return nil
}
