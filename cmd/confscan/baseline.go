package confscan

import (
	"fmt"

	"github.com/redactyl/confscan/internal/engine"
	"github.com/redactyl/confscan/internal/logging"
	"github.com/redactyl/confscan/internal/report"
	"github.com/spf13/cobra"
)

var flagBaselineOutput string

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update TARGET...",
		Short: "Record all current findings as accepted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(flagVerbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			opts, err := resolveOptions(cmd, args, log)
			if err != nil {
				return err
			}
			set, checks, err := engine.BuildRules(opts.Rules)
			if err != nil {
				return err
			}
			res, err := engine.Scan(cmd.Context(), opts.Engine, set, checks)
			if err != nil {
				return err
			}
			if err := report.SaveBaseline(flagBaselineOutput, res.Findings); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated: %d finding(s) written to %s\n", len(res.Findings), flagBaselineOutput)
			return err
		},
	}
	update.Flags().StringVarP(&flagBaselineOutput, "output", "o", report.DefaultBaselineFile, "baseline file to write")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
