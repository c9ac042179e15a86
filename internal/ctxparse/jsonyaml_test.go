package ctxparse

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func find(fs []Field, key string) (Field, bool) {
	for _, f := range fs {
		if strings.Join(f.Path, ".") == key {
			return f, true
		}
	}
	return Field{}, false
}

func TestJSONFields_SimpleAndNested(t *testing.T) {
	good := `{
  "a": 1,
  "b": "val",
  "nested": {"k": "v", "debug": true},
  "list": [
    {"name": "x"},
    null
  ]
}`
	f, err := JSONFields([]byte(good))
	if err != nil {
		t.Fatalf("JSONFields: %v", err)
	}
	cases := []struct {
		key, value string
		line       int
	}{
		{"a", "1", 2},
		{"b", "val", 3},
		{"nested.k", "v", 4},
		{"nested.debug", "true", 4},
		{"list.name", "x", 6},
		{"list", "null", 7},
	}
	for _, c := range cases {
		got, ok := find(f, c.key)
		if !ok {
			t.Fatalf("expected key %q in %#v", c.key, f)
		}
		if got.Value != c.value || got.Line != c.line {
			t.Fatalf("%s: got value=%q line=%d, want %q line %d", c.key, got.Value, got.Line, c.value, c.line)
		}
	}
}

func TestJSONFields_Invalid(t *testing.T) {
	cases := map[string]int{
		"{\n  \"a\": 1,\n  \"b\" 2\n}": 3,
		"{\"a\":":                      1,
		"{\"a\": 1}\n{\"b\": 2}":       2,
	}
	for in, line := range cases {
		_, err := JSONFields([]byte(in))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ParseError for %q, got %v", in, err)
		}
		if pe.Line != line {
			t.Fatalf("%q: expected line %d, got %d (%v)", in, line, pe.Line, pe)
		}
	}

	if f, err := JSONFields([]byte("  \n")); err != nil || f != nil {
		t.Fatalf("empty input should yield nothing, got %#v %v", f, err)
	}
}

func TestYAMLFields_ScalarsAndStructure(t *testing.T) {
	y := "" +
		"root:\n" +
		"  name: service\n" +
		"  nested:\n" +
		"    key: value\n" +
		"list:\n" +
		"  - item1\n" +
		"defaults: &d\n" +
		"  debug: true\n" +
		"prod:\n" +
		"  <<: *d\n" +
		"---\n" +
		"api_version: v1\n"
	f, err := YAMLFields([]byte(y))
	if err != nil {
		t.Fatalf("YAMLFields: %v", err)
	}
	got, ok := find(f, "root.name")
	if !ok || got.Value != "service" || got.Line != 2 {
		t.Fatalf("expected root.name=service on line 2, got %#v", got)
	}
	if got, ok := find(f, "list"); !ok || got.Value != "item1" || got.Line != 6 {
		t.Fatalf("expected list item on line 6, got %#v", got)
	}
	if _, ok := find(f, "prod.debug"); !ok {
		t.Fatalf("expected merge key to expose prod.debug: %#v", f)
	}
	if got, ok := find(f, "api_version"); !ok || got.Line != 12 {
		t.Fatalf("expected api_version from second document on line 12, got %#v", got)
	}
}

func TestYAMLFields_Invalid(t *testing.T) {
	// yaml.v3 reports an unclosed flow sequence against the line before the
	// opening bracket; other errors carry the offending line.
	cases := map[string]int{
		"a: 1\nb: [1, 2\nc: 3\n": 1,
		"a: 1\nb: \"open\nc: 3\n": 2,
	}
	for in, line := range cases {
		_, err := YAMLFields([]byte(in))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%q: expected ParseError, got %v", in, err)
		}
		if pe.Format != "YAML" || pe.Line != line {
			t.Fatalf("%q: unexpected parse error %#v, want line %d", in, pe, line)
		}
	}

	if f, err := YAMLFields(nil); err != nil || len(f) != 0 {
		t.Fatalf("empty YAML should yield nothing, got %#v %v", f, err)
	}
}

func TestYAMLFields_Tags(t *testing.T) {
	f, err := YAMLFields([]byte("debug: true\nquoted: \"true\"\nn: 3\n"))
	if err != nil {
		t.Fatalf("YAMLFields: %v", err)
	}
	want := map[string]string{"debug": TagBool, "quoted": TagStr, "n": TagInt}
	for k, tag := range want {
		if got, ok := find(f, k); !ok || got.Tag != tag {
			t.Fatalf("%s: got %#v, want tag %s", k, got, tag)
		}
	}

	f, err = JSONFields([]byte(`{"debug": true, "quoted": "true", "n": 3, "x": 1.5, "z": null}`))
	if err != nil {
		t.Fatalf("JSONFields: %v", err)
	}
	want = map[string]string{"debug": TagBool, "quoted": TagStr, "n": TagInt, "x": TagFloat, "z": TagNull}
	for k, tag := range want {
		if got, ok := find(f, k); !ok || got.Tag != tag {
			t.Fatalf("%s: got %#v, want tag %s", k, got, tag)
		}
	}
}

// aliasBomb builds levels of anchors where each level lists the previous
// one width times.
func aliasBomb(width, levels int) string {
	var b strings.Builder
	b.WriteString("l0: &l0 [x]\n")
	for i := 1; i <= levels; i++ {
		refs := make([]string, width)
		for j := range refs {
			refs[j] = fmt.Sprintf("*l%d", i-1)
		}
		fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, strings.Join(refs, ", "))
	}
	b.WriteString("debug: true\n")
	return b.String()
}

func TestYAMLFields_AliasExpansionIsBounded(t *testing.T) {
	in := aliasBomb(9, 9)
	f, err := YAMLFields([]byte(in))
	var pe *ParseError
	if !errors.As(err, &pe) || !errors.Is(err, ErrExcessiveAliasing) {
		t.Fatalf("expected excessive aliasing ParseError, got %v", err)
	}
	if pe.Line < 2 || pe.Line > 10 {
		t.Fatalf("expected error on an alias line, got %d", pe.Line)
	}
	if len(f) > MaxAliasNodes+len(in) {
		t.Fatalf("expansion not bounded: %d fields", len(f))
	}

	// small reuse stays within budget
	f, err = YAMLFields([]byte(aliasBomb(3, 2)))
	if err != nil {
		t.Fatalf("YAMLFields: %v", err)
	}
	if got, ok := find(f, "l2"); !ok || got.Value != "x" || got.Line != 1 {
		t.Fatalf("expected aliased value reported at anchor line, got %#v", got)
	}
}
