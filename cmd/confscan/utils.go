package confscan

import (
	"strings"

	"github.com/spf13/cobra"
)

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// pickBoolDefault is pickBool for settings that are on unless turned off.
func pickBoolDefault(def bool, local, global *bool) bool {
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return def
}

// changedInt64 returns v only when the flag was set explicitly, so config
// files can override flag defaults.
func changedInt64(cmd *cobra.Command, name string, v int64) int64 {
	if cmd.Flags().Changed(name) {
		return v
	}
	return 0
}

func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func optBoolPtr(v bool) *bool {
	if !v {
		return nil
	}
	return &v
}
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }
