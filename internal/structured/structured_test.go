package structured

import (
	"fmt"
	"strings"
	"testing"

	"github.com/redactyl/confscan/internal/filetype"
	"github.com/redactyl/confscan/internal/rules"
	"github.com/redactyl/confscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtinRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := New(Builtin()...)
	require.NoError(t, err)
	return r
}

func TestRun_YAMLBuiltins(t *testing.T) {
	doc := `api_version: v1
debug: true
spec:
  containers:
    - name: app
      securityContext:
        privileged: true
  tls:
    insecure_skip_verify: true # confscan:ignore
`
	fs := builtinRunner(t).Run("deploy.yaml", filetype.YAML, []byte(doc))
	require.Len(t, fs, 3)

	assert.Equal(t, "api-version-v1", fs[0].Rule)
	assert.Equal(t, 1, fs[0].Line)
	assert.Equal(t, "api_version: v1", fs[0].Text)
	assert.Equal(t, types.CatMisconfig, fs[0].Category)
	assert.Equal(t, types.SevLow, fs[0].Severity)

	assert.Equal(t, "debug-enabled", fs[1].Rule)
	assert.Equal(t, 2, fs[1].Line)

	assert.Equal(t, "privileged-container", fs[2].Rule)
	assert.Equal(t, 7, fs[2].Line)
	assert.Equal(t, types.SevHigh, fs[2].Severity)
}

func TestRun_JSON(t *testing.T) {
	doc := "{\n  \"debug\": true,\n  \"client\": {\"verify_ssl\": false},\n  \"api_version\": \"v2\"\n}\n"
	fs := builtinRunner(t).Run("app.json", filetype.JSON, []byte(doc))
	require.Len(t, fs, 2)
	assert.Equal(t, "debug-enabled", fs[0].Rule)
	assert.Equal(t, 2, fs[0].Line)
	assert.Equal(t, "ssl-verify-disabled", fs[1].Rule)
	assert.Equal(t, 3, fs[1].Line)
}

func TestRun_NestedDebugIsNotTopLevel(t *testing.T) {
	fs := builtinRunner(t).Run("x.yml", filetype.YAML, []byte("logging:\n  debug: true\n"))
	assert.Empty(t, fs)
}

func TestRun_Malformed(t *testing.T) {
	r := builtinRunner(t)

	fs := r.Run("bad.json", filetype.JSON, []byte("{\n  \"debug\": true,\n  \"x\" 1\n}\n"))
	require.Len(t, fs, 2)
	assert.Equal(t, "debug-enabled", fs[0].Rule)
	assert.Equal(t, MalformedID, fs[1].Rule)
	assert.Equal(t, 3, fs[1].Line)
	assert.Equal(t, types.SevMed, fs[1].Severity)

	fs = r.Run("bad.yaml", filetype.YAML, []byte("a: [1, 2\n"))
	require.Len(t, fs, 1)
	assert.Equal(t, MalformedID, fs[0].Rule)

	fs = r.Select(nil, []string{MalformedID}).Run("bad.yaml", filetype.YAML, []byte("a: [1, 2\n"))
	assert.Empty(t, fs)
}

func TestRun_SkipsOtherTypesAndIgnoreFile(t *testing.T) {
	r := builtinRunner(t)
	assert.Empty(t, r.Run("x.env", filetype.Env, []byte("debug: true\n")))
	assert.Empty(t, r.Run("x.yml", filetype.YAML, []byte("# confscan:ignore-file\ndebug: true\n")))
	var nilRunner *Runner
	assert.Empty(t, nilRunner.Run("x.yml", filetype.YAML, []byte("debug: true\n")))
}

func TestCompile(t *testing.T) {
	defs := []rules.CheckDef{
		{ID: "replicas-one", Key: "**/Replicas", Equals: "1", Severity: "low", FileTypes: []string{"yaml"}},
	}
	cs, err := Compile(defs, "rules.yml")
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "**/replicas", cs[0].Key)
	assert.Equal(t, []filetype.Type{filetype.YAML}, cs[0].FileTypes)

	r, err := New(cs...)
	require.NoError(t, err)
	fs := r.Run("d.yaml", filetype.YAML, []byte("spec:\n  replicas: 1\n"))
	require.Len(t, fs, 1)
	assert.Equal(t, "replicas-one", fs[0].Rule)
	assert.Empty(t, r.Run("d.json", filetype.JSON, []byte(`{"spec": {"replicas": 1}}`)))

	_, err = Compile([]rules.CheckDef{{ID: "x", Key: ""}}, "f")
	assert.Error(t, err)
	_, err = Compile([]rules.CheckDef{{ID: "x", Key: "a", Severity: "huge"}}, "f")
	assert.Error(t, err)
	_, err = Compile([]rules.CheckDef{{ID: "x", Key: "a", FileTypes: []string{"env"}}}, "f")
	assert.Error(t, err)
	_, err = Compile([]rules.CheckDef{{ID: "x", Key: "[a"}}, "f")
	assert.Error(t, err)
	_, err = Compile([]rules.CheckDef{{ID: "x", Key: "a", Tag: "!!map"}}, "f")
	assert.Error(t, err)
}

func TestCompile_Tag(t *testing.T) {
	cs, err := Compile([]rules.CheckDef{{ID: "port-string", Key: "port", Equals: "80", Tag: "!!str"}}, "rules.yml")
	require.NoError(t, err)
	r, err := New(cs...)
	require.NoError(t, err)
	assert.Empty(t, r.Run("a.yaml", filetype.YAML, []byte("port: 80\n")))
	assert.Len(t, r.Run("a.yaml", filetype.YAML, []byte("port: \"80\"\n")), 1)
}

func TestRun_BooleanChecksIgnoreStrings(t *testing.T) {
	r := builtinRunner(t)
	assert.Empty(t, r.Run("a.json", filetype.JSON, []byte(`{"debug": "true", "tls": {"verify_ssl": "false"}}`)))
	assert.Empty(t, r.Run("a.yaml", filetype.YAML, []byte("debug: \"true\"\nprivileged: 'true'\n")))

	fs := r.Run("a.yaml", filetype.YAML, []byte("debug: True\n"))
	require.Len(t, fs, 1)
	assert.Equal(t, "debug-enabled", fs[0].Rule)
}

func TestRun_AliasBombIsMalformed(t *testing.T) {
	var b strings.Builder
	b.WriteString("debug: true\nl0: &l0 [x]\n")
	for i := 1; i <= 9; i++ {
		refs := strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*l%d, ", i-1), 9), ", ")
		fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, refs)
	}
	fs := builtinRunner(t).Run("bomb.yaml", filetype.YAML, []byte(b.String()))
	require.Len(t, fs, 2)
	assert.Equal(t, "debug-enabled", fs[0].Rule)
	assert.Equal(t, MalformedID, fs[1].Rule)
	assert.Contains(t, fs[1].Description, "aliasing")
}

func TestNew_Duplicates(t *testing.T) {
	_, err := New(append(Builtin(), Builtin()[1])...)
	assert.ErrorContains(t, err, "duplicate")
}

func TestSelect(t *testing.T) {
	r := builtinRunner(t)
	assert.Equal(t, []string{"debug-enabled"}, r.Select([]string{"debug-enabled"}, nil).IDs())
	assert.Equal(t, r.Len()-1, r.Select(nil, []string{"debug-enabled"}).Len())
}
