package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redactyl/confscan/internal/rules"
	"github.com/redactyl/confscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScanner(t *testing.T, opts Options, cats ...types.Category) *Scanner {
	t.Helper()
	set, err := rules.New(rules.Builtin()...)
	require.NoError(t, err)
	if len(cats) > 0 {
		set = set.WithCategories(cats...)
	}
	return New(set, opts)
}

func ruleIDs(fs []types.Finding) []string {
	var out []string
	for _, f := range fs {
		out = append(out, f.Rule)
	}
	return out
}

func TestScanReader_PasswordWithTodo(t *testing.T) {
	s := newScanner(t, Options{})
	src := "db:\n  host: localhost\npassword = \"abc123\"  # TODO remove before prod\n"

	fs, err := s.ScanReader("app.conf", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, fs, 2)

	assert.Equal(t, "hardcoded-password", fs[0].Rule)
	assert.Equal(t, types.CatSecret, fs[0].Category)
	assert.Equal(t, 3, fs[0].Line)
	assert.Equal(t, "abc123", fs[0].Match)
	assert.Equal(t, `password = "abc123"  # TODO remove before prod`, fs[0].Text)
	assert.Equal(t, "app.conf", fs[0].Path)

	assert.Equal(t, "todo-marker", fs[1].Rule)
	assert.Equal(t, types.CatComment, fs[1].Category)
}

func TestScanReader_FindSecretsSubset(t *testing.T) {
	src := strings.Join([]string{
		"# fixed in v1, still works this way?",
		"password = \"abc123\"  # TODO remove before prod",
		"api_key: \"Zx81kQp02LmN7vTq4RsW9yBc\"",
		"# deprecated: use new_endpoint",
		"",
	}, "\n")

	all, err := newScanner(t, Options{}).ScanReader("x.yml", strings.NewReader(src))
	require.NoError(t, err)
	secrets, err := newScanner(t, Options{}, types.CatSecret).ScanReader("x.yml", strings.NewReader(src))
	require.NoError(t, err)

	require.NotEmpty(t, secrets)
	assert.Less(t, len(secrets), len(all))
	for _, f := range secrets {
		assert.Contains(t, all, f)
		assert.Equal(t, types.CatSecret, f.Category)
	}
	for _, f := range all {
		if f.Line == 1 {
			assert.Equal(t, types.CatComment, f.Category)
		}
	}
}

func TestScanReader_OrderedAndIdempotent(t *testing.T) {
	s := newScanner(t, Options{})
	src := "# TODO one\nkey: value\n# TODO: is this still needed?\npassword: hunter22\n"

	first, err := s.ScanReader("f", strings.NewReader(src))
	require.NoError(t, err)
	second, err := s.ScanReader("f", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	prev := 0
	for _, f := range first {
		assert.GreaterOrEqual(t, f.Line, prev)
		assert.GreaterOrEqual(t, f.Line, 1)
		prev = f.Line
	}
	assert.Equal(t, []string{"todo-marker", "todo-marker", "uncertain-comment", "hardcoded-password"}, ruleIDs(first))
}

func TestScanReader_NoMatches(t *testing.T) {
	s := newScanner(t, Options{})
	fs, err := s.ScanReader("clean.yaml", strings.NewReader("name: web\nreplicas: 3\n"))
	require.NoError(t, err)
	assert.Empty(t, fs)

	fs, err = s.ScanReader("empty.yaml", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fs)
}

func TestScanReader_Binary(t *testing.T) {
	s := newScanner(t, Options{})
	_, err := s.ScanReader("blob.bin", strings.NewReader("password=abc123\x00\x01\x02"))
	assert.ErrorIs(t, err, ErrBinary)

	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
	_, err = s.ScanReader("logo.png", strings.NewReader(png))
	assert.ErrorIs(t, err, ErrBinary)
}

func TestScanReader_LineTooLong(t *testing.T) {
	s := newScanner(t, Options{MaxLineBytes: 1024})
	src := "ok: 1\n" + strings.Repeat("a", 4096) + "\n"
	fs, err := s.ScanReader("long.txt", strings.NewReader(src))
	assert.ErrorIs(t, err, ErrLineTooLong)
	assert.Nil(t, fs)
}

func TestScanReader_BOMAndCRLF(t *testing.T) {
	s := newScanner(t, Options{}, types.CatComment)
	fs, err := s.ScanReader("bom.ini", strings.NewReader("\ufeff# TODO fix\r\nname=x\r\n"))
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, 1, fs[0].Line)
	assert.Equal(t, 3, fs[0].Column)
	assert.Equal(t, "TODO", fs[0].Match)
	assert.Equal(t, "# TODO fix", fs[0].Text)
}

func TestScanReader_InlineSuppressions(t *testing.T) {
	s := newScanner(t, Options{}, types.CatSecret)
	src := strings.Join([]string{
		"password: hunter22 # confscan:ignore",
		"# confscan:ignore-next-line",
		"password: hunter23",
		"password: hunter24",
		"# confscan:ignore-start",
		"password: hunter25",
		"secret: topsecret",
		"# confscan:ignore-end",
		"password: hunter26",
		"",
	}, "\n")
	fs, err := s.ScanReader("s.yml", strings.NewReader(src))
	require.NoError(t, err)
	var lines []int
	for _, f := range fs {
		lines = append(lines, f.Line)
	}
	assert.Equal(t, []int{4, 9}, lines)

	fs, err = s.ScanReader("s.yml", strings.NewReader("password: hunter22\n# confscan:ignore-file\n"))
	require.NoError(t, err)
	assert.Empty(t, fs)
}

func TestScanReader_Redact(t *testing.T) {
	s := newScanner(t, Options{Redact: true})
	fs, err := s.ScanReader("r.env", strings.NewReader("DB_PASSWORD=supersecret1 # TODO rotate\n"))
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "su********t1", fs[0].Match)
	assert.Equal(t, "DB_PASSWORD=su********t1 # TODO rotate", fs[0].Text)
	assert.NotContains(t, fs[1].Text, "supersecret1", "redaction applies to every secret on the line")
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "values.yaml")
	require.NoError(t, os.WriteFile(p, []byte("# this value is obsolete\nport: 80\n"), 0o644))

	s := newScanner(t, Options{})
	fs, err := s.ScanFile(p, "values.yaml")
	require.NoError(t, err)
	require.Len(t, fs, 1)
	assert.Equal(t, "outdated-comment", fs[0].Rule)
	assert.Equal(t, "values.yaml", fs[0].Path)

	_, err = s.ScanFile(filepath.Join(dir, "missing.yaml"), "missing.yaml")
	assert.Error(t, err)
}
