package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnoreMatch(t *testing.T) {
	dir := t.TempDir()
	ig := filepath.Join(dir, FileName)
	content := "node_modules/\n*.pem\n# comment\n\nsecret.env\nfixtures/**/*.yaml\n./build/out.json\n"
	if err := os.WriteFile(ig, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(ig)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 5 {
		t.Fatalf("expected 5 patterns, got %d", m.Len())
	}
	cases := map[string]bool{
		"node_modules/pkg/index.js":   true,
		"web/node_modules/x/app.json": true,
		"certs/key.pem":               true,
		"secret.env":                  true,
		"conf/secret.env":             true,
		"fixtures/a/b/values.yaml":    true,
		"build/out.json":              true,
		"other/build/out.json":        false,
		"src/app.go":                  false,
		"fixtures.yaml":               false,
	}
	for p, want := range cases {
		if got := m.Match(p); got != want {
			t.Fatalf("Match(%q)=%v want %v", p, got, want)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), FileName))
	if err == nil {
		t.Fatal("expected error for missing ignore file")
	}
	if m.Match("anything.yaml") {
		t.Fatal("empty matcher must not match")
	}
}
