package confscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/redactyl/confscan/internal/engine"
	"github.com/redactyl/confscan/internal/filetype"
	"github.com/redactyl/confscan/internal/logging"
	"github.com/redactyl/confscan/internal/report"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagVerbose         bool
	flagFileType        string
	flagFindSecrets     bool
	flagRecursive       bool
	flagRules           string
	flagNoDefaultRules  bool
	flagGitleaksRules   bool
	flagEnable          string
	flagDisable         string
	flagInclude         string
	flagExclude         string
	flagMaxBytes        int64
	flagDefaultExcludes bool
	flagRedact          bool
	flagJSON            bool
	flagSARIF           bool
	flagNoColor         bool
	flagBaseline        string
	flagFailOn          string

	version = "0.1.0"
)

// exitCodeError carries a process exit code without an error message.
type exitCodeError struct{ code int }

func (e *exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// rootCmd is the base Cobra command; it scans its arguments.
var rootCmd = &cobra.Command{
	Use:   "confscan [flags] TARGET...",
	Short: "Find secrets and stale comments in config files",
	Long: "confscan scans configuration files and infrastructure definitions for hard-coded\n" +
		"secrets, outdated or misleading comments and risky settings.\n\n" +
		"A file TARGET is always scanned. A directory TARGET is expanded to the config\n" +
		"files it contains, descending into subdirectories only with --recursive.",
	Args:          cobra.MinimumNArgs(1),
	RunE:          runScan,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the confscan CLI. It should be called by the main package.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command tree and maps the outcome to an exit code:
// 0 success, 1 fail-on threshold reached, 2 configuration or target error.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	_, _ = fmt.Fprintln(stderr, "error:", err)
	return 2
}

func init() {
	rootCmd.Version = version

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "include the offending line in output and log debug details")
	pf.StringVarP(&flagFileType, "filetype", "t", "", "file type: "+filetype.Names()+" (default auto)")
	pf.BoolVar(&flagFindSecrets, "find-secrets", false, "only report sensitive information")
	pf.BoolVarP(&flagRecursive, "recursive", "r", false, "descend into subdirectories of directory targets")
	pf.StringVar(&flagRules, "rules", "", "YAML rules file appended to the built-in rules")
	pf.BoolVar(&flagNoDefaultRules, "no-default-rules", false, "do not load the built-in rules and checks")
	pf.BoolVar(&flagGitleaksRules, "gitleaks-rules", false, "add the gitleaks default rule pack")
	pf.StringVar(&flagEnable, "enable", "", "only run these rules (comma-separated IDs)")
	pf.StringVar(&flagDisable, "disable", "", "disable these rules (comma-separated IDs)")
	pf.StringVar(&flagInclude, "include", "", "comma-separated include globs")
	pf.StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	pf.Int64Var(&flagMaxBytes, "max-bytes", engine.DefaultMaxBytes, "skip larger files found in directories")
	pf.BoolVar(&flagDefaultExcludes, "default-excludes", true, "apply built-in exclude list (VCS dirs, vendored deps, images, archives)")
	pf.BoolVar(&flagRedact, "redact", false, "mask secret values in output")

	f := rootCmd.Flags()
	f.BoolVar(&flagJSON, "json", false, "emit JSON")
	f.BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	f.BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	f.StringVar(&flagBaseline, "baseline", "", "suppress findings recorded in this baseline (default "+report.DefaultBaselineFile+" if present)")
	f.StringVar(&flagFailOn, "fail-on", "", "exit 1 when findings at or above low|medium|high remain")
}

func runScan(cmd *cobra.Command, args []string) error {
	log, err := logging.New(flagVerbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if flagJSON && flagSARIF {
		return &engine.ConfigError{Msg: "--json and --sarif are mutually exclusive"}
	}
	opts, err := resolveOptions(cmd, args, log)
	if err != nil {
		return err
	}
	if err := opts.loadBaseline(); err != nil {
		return err
	}

	set, checks, err := engine.BuildRules(opts.Rules)
	if err != nil {
		return err
	}
	log.Debugw("active rules", "rules", set.Len(), "checks", checks.Len())

	res, err := engine.Scan(cmd.Context(), opts.Engine, set, checks)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case flagSARIF:
		if err := report.WriteSARIF(out, res.Findings, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		if err := report.WriteJSON(out, res.Findings); err != nil {
			return err
		}
	default:
		color := !opts.NoColor && isTerminal(out)
		if err := report.WriteText(out, res.Findings, report.TextOptions{Verbose: flagVerbose, Color: color}); err != nil {
			return err
		}
		if err := report.WriteSummary(out, report.Summary{
			Findings:     len(res.Findings),
			FilesScanned: res.FilesScanned,
			Skipped:      len(res.Skipped),
			Baselined:    res.Baselined,
			Duration:     res.Duration,
		}); err != nil {
			return err
		}
	}

	if report.ShouldFail(res.Findings, opts.FailOn) {
		return &exitCodeError{code: 1}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
