package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/redactyl/confscan/internal/types"
	"github.com/zricethezav/gitleaks/v8/detect"
)

// GitleaksPrefix namespaces rule IDs imported from the gitleaks default config.
const GitleaksPrefix = "gitleaks-"

// Gitleaks converts the gitleaks default rule pack into secret line rules.
// Path-only rules and patterns the standard regexp engine rejects are skipped.
func Gitleaks() ([]Rule, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("error creating default gitleaks detector: %w", err)
	}
	ids := make([]string, 0, len(d.Config.Rules))
	for id := range d.Config.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Rule, 0, len(ids))
	for _, id := range ids {
		gr := d.Config.Rules[id]
		if gr.Regex == nil {
			continue
		}
		re, err := regexp.Compile(gr.Regex.String())
		if err != nil {
			continue
		}
		group := gr.SecretGroup
		if group == 0 && re.NumSubexp() > 0 {
			group = 1
		}
		if group > re.NumSubexp() {
			group = 0
		}
		var kws []string
		for _, k := range gr.Keywords {
			kws = append(kws, strings.ToLower(k))
		}
		desc := gr.Description
		if desc == "" {
			desc = "gitleaks rule " + gr.RuleID
		}
		out = append(out, Rule{
			ID:          GitleaksPrefix + gr.RuleID,
			Description: desc,
			Category:    types.CatSecret,
			Severity:    types.SevHigh,
			Pattern:     re,
			SecretGroup: group,
			Keywords:    kws,
			MinEntropy:  gr.Entropy,
			Source:      "gitleaks",
		})
	}
	return out, nil
}
