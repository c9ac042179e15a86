package engine

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redactyl/confscan/internal/rules"
	"github.com/redactyl/confscan/internal/structured"
	"github.com/redactyl/confscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildRules_Defaults(t *testing.T) {
	set, checks, err := BuildRules(RuleOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(rules.Builtin()), set.Len())
	assert.Equal(t, len(structured.Builtin()), checks.Len())
}

func TestBuildRules_FindSecrets(t *testing.T) {
	set, checks, err := BuildRules(RuleOptions{FindSecrets: true})
	require.NoError(t, err)
	assert.Equal(t, 0, checks.Len())
	for _, r := range set.Rules() {
		assert.Equal(t, types.CatSecret, r.Category, r.ID)
	}
	assert.Greater(t, set.Len(), 0)
}

func TestBuildRules_EnableSpansRulesAndChecks(t *testing.T) {
	set, checks, err := BuildRules(RuleOptions{Enable: []string{"todo-marker", "debug-enabled"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"todo-marker"}, set.IDs())
	assert.Equal(t, []string{"debug-enabled"}, checks.IDs())
}

func TestBuildRules_UnknownIDWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	_, _, err := BuildRules(RuleOptions{Disable: []string{"no-such-rule"}, Logger: zap.New(core).Sugar()})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("unknown rule id").Len())
}

func TestBuildRules_RulesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rules.yml")
	writeFile(t, p, `rules:
  - id: internal-host
    category: comment
    severity: low
    pattern: 'corp\.internal'
checks:
  - id: replicas-one
    key: "**/replicas"
    equals: "1"
`)
	set, checks, err := BuildRules(RuleOptions{RulesFile: p, NoDefaultRules: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"internal-host"}, set.IDs())
	assert.Equal(t, []string{"replicas-one"}, checks.IDs())
}

func TestBuildRules_Errors(t *testing.T) {
	var ce *ConfigError

	_, _, err := BuildRules(RuleOptions{NoDefaultRules: true})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "no rules active", ce.Msg)

	_, _, err = BuildRules(RuleOptions{Enable: []string{"debug-enabled"}, FindSecrets: true})
	assert.True(t, errors.As(err, &ce))

	_, _, err = BuildRules(RuleOptions{RulesFile: filepath.Join(t.TempDir(), "missing.yml")})
	assert.True(t, errors.As(err, &ce))

	p := filepath.Join(t.TempDir(), "dup.yml")
	writeFile(t, p, "rules:\n  - id: todo-marker\n    category: comment\n    pattern: x\n")
	_, _, err = BuildRules(RuleOptions{RulesFile: p})
	require.True(t, errors.As(err, &ce))
	assert.ErrorContains(t, err, "duplicate")
}

func TestBuildRules_GitleaksAppendedAfterBuiltins(t *testing.T) {
	set, _, err := BuildRules(RuleOptions{Gitleaks: true})
	require.NoError(t, err)
	ids := set.IDs()
	nb := len(rules.Builtin())
	require.Greater(t, len(ids), nb)
	assert.Equal(t, rules.Builtin()[0].ID, ids[0])
	for _, id := range ids[nb:] {
		assert.True(t, strings.HasPrefix(id, rules.GitleaksPrefix), id)
	}

	gl, err := rules.Gitleaks()
	require.NoError(t, err)
	require.NotEmpty(t, gl)
	p := filepath.Join(t.TempDir(), "clash.yml")
	writeFile(t, p, "rules:\n  - id: "+gl[0].ID+"\n    category: secret\n    pattern: x\n")
	_, _, err = BuildRules(RuleOptions{RulesFile: p, Gitleaks: true})
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "gitleaks rules", ce.Msg)
	assert.ErrorContains(t, err, "duplicate")
}
