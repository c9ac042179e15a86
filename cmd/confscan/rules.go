package confscan

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/redactyl/confscan/internal/engine"
	"github.com/redactyl/confscan/internal/logging"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rules [TARGET]",
		Short: "List active rules and checks",
		Long:  "List the rules and structured checks that a scan with the same flags would run. TARGET only selects which local config file applies.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRules,
	}
	rootCmd.AddCommand(cmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	log, err := logging.New(flagVerbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	targets := args
	if len(targets) == 0 {
		targets = []string{"."}
	}
	opts, err := resolveOptions(cmd, targets, log)
	if err != nil {
		return err
	}
	set, checks, err := engine.BuildRules(opts.Rules)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("ID", "Category", "Severity", "Source", "Description")
	for _, r := range set.Rules() {
		if err := table.Append([]string{r.ID, string(r.Category), string(r.Severity), r.Source, r.Description}); err != nil {
			return err
		}
	}
	for _, c := range checks.Checks() {
		src := c.Source
		if src == "" {
			src = "builtin"
		}
		desc := c.Description
		if c.Key != "" {
			desc = fmt.Sprintf("%s (%s = %s)", desc, c.Key, strings.ToLower(c.Equals))
		}
		if err := table.Append([]string{c.ID, "misconfiguration", string(c.Severity), src, desc}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d rule(s), %d check(s)\n", set.Len(), checks.Len())
	return err
}
