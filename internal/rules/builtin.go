package rules

import (
	"regexp"

	"github.com/redactyl/confscan/internal/types"
	"github.com/redactyl/confscan/internal/validate"
)

// commentStart matches the opening of a line or trailing comment in the
// config syntaxes we scan (#, //, /*, <!--, ;) preceded by start of line or
// whitespace so URL fragments and flags are not taken for comments.
const commentStart = `(?:^|\s)(?:#|//|/\*|<!--|;)`

// placeholder values that are references rather than literals.
var rePlaceholder = regexp.MustCompile(`(?i)^(?:\$\{?[A-Za-z_]|\{\{|%\(|<[^>]+>$|\*+$|(?:null|none|nil|true|false|x{3,}|\.\.\.)$)`)

type builtinRule struct {
	id          string
	category    types.Category
	severity    types.Severity
	pattern     string
	group       int
	allow       *regexp.Regexp
	keywords    []string
	minEntropy  float64
	validate    func(string) bool
	description string
}

var builtinDefs = []builtinRule{
	// Sensitive information
	{
		id: "generic-secret-assignment", category: types.CatSecret, severity: types.SevHigh,
		pattern:     `(?i)(api[_-]?key|apikey|access[_-]?token|auth[_-]?token|password|secret)["']?\s*[:=]\s*["']?([A-Za-z0-9_-]{20,})["']?`,
		group:       2,
		allow:       rePlaceholder,
		minEntropy:  3.0,
		description: "Long secret-like value assigned to a key, password or secret",
	},
	{
		id: "hardcoded-password", category: types.CatSecret, severity: types.SevHigh,
		pattern:     `(?i)(?:password|passwd|pwd|secret)(?:[_.-]?(?:key|value|token))?["']?\s*[:=]\s*["']?([^\s"'#,;]{3,})`,
		group:       1,
		allow:       rePlaceholder,
		keywords:    []string{"pass", "pwd", "secret"},
		description: "Password or secret assigned a literal value",
	},
	{
		id: "aws-access-key-id", category: types.CatSecret, severity: types.SevHigh,
		pattern:     `\b((?:AKIA|ASIA|ABIA|ACCA)[A-Z0-9]{16})\b`,
		group:       1,
		keywords:    []string{"akia", "asia", "abia", "acca"},
		validate:    validate.AWSAccessKeyID,
		description: "AWS access key ID",
	},
	{
		id: "aws-secret-access-key", category: types.CatSecret, severity: types.SevHigh,
		pattern:     `(?i)aws_?secret_?(?:access_?)?key["']?\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})`,
		group:       1,
		keywords:    []string{"aws"},
		validate:    validate.AWSSecretKey,
		description: "AWS secret access key",
	},
	{
		id: "private-key-block", category: types.CatSecret, severity: types.SevHigh,
		pattern:     `-----BEGIN[ A-Z0-9]*PRIVATE KEY(?: BLOCK)?-----`,
		keywords:    []string{"private key"},
		description: "PEM private key block",
	},
	{
		id: "github-token", category: types.CatSecret, severity: types.SevHigh,
		pattern:     `\b(gh[pousr]_[A-Za-z0-9]{36,255})\b`,
		group:       1,
		keywords:    []string{"gh"},
		validate:    validate.GitHubToken,
		description: "GitHub token",
	},
	{
		id: "slack-token", category: types.CatSecret, severity: types.SevHigh,
		pattern:     `\b(xox[baprs]-[A-Za-z0-9-]{10,})`,
		group:       1,
		keywords:    []string{"xox"},
		description: "Slack token",
	},
	{
		id: "credentials-in-url", category: types.CatSecret, severity: types.SevHigh,
		pattern:     `\b[A-Za-z][A-Za-z0-9+.-]*://[^\s:/@"']+:([^\s@/"']+)@`,
		group:       1,
		allow:       rePlaceholder,
		keywords:    []string{"://"},
		description: "Credentials embedded in a URL",
	},
	{
		id: "bearer-token", category: types.CatSecret, severity: types.SevMed,
		pattern:     `(?i)\bbearer\s+([A-Za-z0-9._~+/-]{20,}=*)`,
		group:       1,
		allow:       rePlaceholder,
		keywords:    []string{"bearer"},
		description: "Bearer token in an authorization value",
	},
	{
		id: "jwt", category: types.CatSecret, severity: types.SevMed,
		pattern:     `\b(eyJ[A-Za-z0-9_-]{8,}\.eyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,})`,
		group:       1,
		keywords:    []string{"eyj"},
		validate:    validate.JWT,
		description: "JSON Web Token",
	},

	// Outdated or misleading comments
	{
		id: "todo-marker", category: types.CatComment, severity: types.SevLow,
		pattern:     commentStart + `.*?\b(TODO|FIXME|XXX|HACK)\b`,
		group:       1,
		description: "TODO/FIXME/XXX/HACK left in a configuration comment",
	},
	{
		id: "outdated-comment", category: types.CatComment, severity: types.SevLow,
		pattern:     `(?i)` + commentStart + `.*?\b(deprecated|obsolete|outdated|old|legacy|no longer (?:used|needed|valid|true|works?))\b`,
		group:       1,
		description: "Comment describing the setting as deprecated, obsolete or old",
	},
	{
		id: "stale-version-note", category: types.CatComment, severity: types.SevLow,
		pattern:     `(?i)` + commentStart + `.*?\b((?:fixed|added|changed|removed|introduced|deprecated|since|until|as of)\s+(?:in\s+)?(?:v\d+(?:\.\d+)*|version\s+\d+(?:\.\d+)*))\b`,
		group:       1,
		description: "Comment tied to a specific version that may no longer apply",
	},
	{
		id: "uncertain-comment", category: types.CatComment, severity: types.SevLow,
		pattern:     commentStart + `.*\S\?+\s*(?:-->|\*/)?\s*$`,
		description: "Comment phrased as an open question about the configuration",
	},
}

// Builtin returns the built-in rules in their fixed order.
func Builtin() []Rule {
	out := make([]Rule, 0, len(builtinDefs))
	for _, d := range builtinDefs {
		out = append(out, Rule{
			ID:          d.id,
			Description: d.description,
			Category:    d.category,
			Severity:    d.severity,
			Pattern:     regexp.MustCompile(d.pattern),
			SecretGroup: d.group,
			Allow:       d.allow,
			Keywords:    d.keywords,
			MinEntropy:  d.minEntropy,
			Validate:    d.validate,
			Source:      "builtin",
		})
	}
	return out
}
