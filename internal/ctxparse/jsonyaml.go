package ctxparse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Field represents a scalar value, its key path and the 1-based line number
// where the value appears. Sequence items inherit their parent's path.
type Field struct {
	Path  []string
	Value string
	// Tag is the resolved YAML short tag ("!!str", "!!bool", "!!int",
	// "!!float", "!!null"); JSON scalars use the same names.
	Tag  string
	Line int
}

// ParseError reports a document that could not be parsed, with the best
// known 1-based line of the problem.
type ParseError struct {
	Format string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s at line %d: %v", e.Format, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Scalar tags shared by YAML and JSON fields.
const (
	TagStr   = "!!str"
	TagBool  = "!!bool"
	TagInt   = "!!int"
	TagFloat = "!!float"
	TagNull  = "!!null"
)

var yamlErrLine = regexp.MustCompile(`line (\d+)`)

// MaxAliasNodes bounds the nodes visited through aliases in one YAML
// document. Nested aliases multiply, so a few hundred bytes can otherwise
// expand into millions of fields.
const MaxAliasNodes = 10000

// ErrExcessiveAliasing is wrapped in the ParseError returned when a document
// exceeds MaxAliasNodes.
var ErrExcessiveAliasing = errors.New("document contains excessive aliasing")

// YAMLFields uses yaml.v3 which provides line numbers for nodes; we flatten
// scalars of every document in the stream. Aliased values are reported at
// their anchor's line.
func YAMLFields(b []byte) ([]Field, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	var out []Field
	for {
		var root yaml.Node
		err := dec.Decode(&root)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			line := 1
			if m := yamlErrLine.FindStringSubmatch(err.Error()); m != nil {
				line, _ = strconv.Atoi(m[1])
			}
			return out, &ParseError{Format: "YAML", Line: line, Err: err}
		}
		w := yamlWalker{out: out}
		if err := w.walk(&root, nil, 0, false); err != nil {
			return w.out, &ParseError{Format: "YAML", Line: w.aliasLine, Err: err}
		}
		out = w.out
	}
}

type yamlWalker struct {
	out []Field
	// aliased counts nodes visited below an alias; aliasLine is the line
	// of the alias most recently followed.
	aliased   int
	aliasLine int
}

func (w *yamlWalker) walk(n *yaml.Node, path []string, depth int, viaAlias bool) error {
	// alias cycles
	if n == nil || depth > 64 {
		return nil
	}
	if viaAlias {
		w.aliased++
		if w.aliased > MaxAliasNodes {
			return ErrExcessiveAliasing
		}
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			if err := w.walk(c, path, depth+1, viaAlias); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			child := childPath(path, k.Value)
			if k.Value == "<<" {
				child = path
			}
			if err := w.walk(v, child, depth+1, viaAlias); err != nil {
				return err
			}
		}
	case yaml.AliasNode:
		w.aliasLine = n.Line
		return w.walk(n.Alias, path, depth+1, true)
	case yaml.ScalarNode:
		if len(path) > 0 {
			w.out = append(w.out, Field{Path: path, Value: n.Value, Tag: n.ShortTag(), Line: n.Line})
		}
	}
	return nil
}

// JSONFields walks the token stream and records each scalar with the line
// derived from the decoder's input offset.
func JSONFields(b []byte) ([]Field, error) {
	p := &jsonParser{dec: json.NewDecoder(bytes.NewReader(b)), lines: lineStarts(b)}
	p.dec.UseNumber()

	tok, err := p.dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err == nil {
		err = p.value(tok, nil)
	}
	if err == nil {
		if _, terr := p.dec.Token(); !errors.Is(terr, io.EOF) {
			err = errors.New("unexpected data after top-level value")
			if terr != nil {
				err = terr
			}
		}
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return p.out, &ParseError{Format: "JSON", Line: p.errLine(err), Err: err}
	}
	return p.out, nil
}

type jsonParser struct {
	dec   *json.Decoder
	lines []int64
	out   []Field
}

func (p *jsonParser) value(tok json.Token, path []string) error {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			for p.dec.More() {
				kt, err := p.dec.Token()
				if err != nil {
					return err
				}
				key, ok := kt.(string)
				if !ok {
					return fmt.Errorf("object key is %T, not string", kt)
				}
				vt, err := p.dec.Token()
				if err != nil {
					return err
				}
				if err := p.value(vt, childPath(path, key)); err != nil {
					return err
				}
			}
		case '[':
			for p.dec.More() {
				vt, err := p.dec.Token()
				if err != nil {
					return err
				}
				if err := p.value(vt, path); err != nil {
					return err
				}
			}
		}
		// closing delimiter
		_, err := p.dec.Token()
		return err
	case string:
		p.scalar(path, v, TagStr)
	case json.Number:
		tag := TagInt
		if strings.ContainsAny(v.String(), ".eE") {
			tag = TagFloat
		}
		p.scalar(path, v.String(), tag)
	case bool:
		p.scalar(path, strconv.FormatBool(v), TagBool)
	case nil:
		p.scalar(path, "null", TagNull)
	}
	return nil
}

func (p *jsonParser) scalar(path []string, v, tag string) {
	if len(path) == 0 {
		return
	}
	// offset is just past the token; scalars never span lines
	p.out = append(p.out, Field{Path: path, Value: v, Tag: tag, Line: p.lineAt(p.dec.InputOffset() - 1)})
}

func (p *jsonParser) errLine(err error) int {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return p.lineAt(se.Offset - 1)
	}
	return p.lineAt(p.dec.InputOffset() - 1)
}

func (p *jsonParser) lineAt(off int64) int {
	if off < 0 {
		off = 0
	}
	return sort.Search(len(p.lines), func(i int) bool { return p.lines[i] > off })
}

// lineStarts returns the byte offset at which each line begins.
func lineStarts(b []byte) []int64 {
	starts := []int64{0}
	for i, c := range b {
		if c == '\n' {
			starts = append(starts, int64(i+1))
		}
	}
	return starts
}

func childPath(path []string, key string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = key
	return out
}
