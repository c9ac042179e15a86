package confscan

import (
	"fmt"
	"os"

	"github.com/redactyl/confscan/internal/config"
	"github.com/redactyl/confscan/internal/engine"
	"github.com/redactyl/confscan/internal/filetype"
	"github.com/redactyl/confscan/internal/types"
	"github.com/spf13/cobra"
)

var (
	cfgOutput  string
	cfgForce   bool
	cfgFailOn  string
	cfgNoColor bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a " + config.LocalNames[0] + " from the given scan flags",
		Long: "Generate a " + config.LocalNames[0] + " from the given scan flags, e.g.\n\n" +
			"  confscan config init --recursive -t yaml --disable todo-marker --fail-on high",
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	initCmd.Flags().StringVar(&cfgFailOn, "fail-on", "", "default fail-on severity (low|medium|high)")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := filetype.Parse(flagFileType); err != nil {
		return &engine.ConfigError{Msg: "invalid --filetype", Err: err}
	}
	if cfgFailOn != "" {
		if _, ok := types.ParseSeverity(cfgFailOn); !ok {
			return &engine.ConfigError{Msg: "invalid --fail-on " + cfgFailOn + " (want low|medium|high)"}
		}
	}
	if !cfgForce {
		if _, err := os.Stat(cfgOutput); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
		}
	}

	fc := config.FileConfig{
		Include:         optStrPtr(flagInclude),
		Exclude:         optStrPtr(flagExclude),
		MaxBytes:        int64Ptr(flagMaxBytes),
		Enable:          optStrPtr(flagEnable),
		Disable:         optStrPtr(flagDisable),
		FileType:        optStrPtr(flagFileType),
		Recursive:       boolPtr(flagRecursive),
		FindSecrets:     boolPtr(flagFindSecrets),
		Rules:           optStrPtr(flagRules),
		NoDefaultRules:  optBoolPtr(flagNoDefaultRules),
		GitleaksRules:   optBoolPtr(flagGitleaksRules),
		Redact:          boolPtr(flagRedact),
		NoColor:         optBoolPtr(cfgNoColor),
		DefaultExcludes: boolPtr(flagDefaultExcludes),
		FailOn:          optStrPtr(cfgFailOn),
	}
	if err := config.Save(cfgOutput, fc); err != nil {
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return err
}
