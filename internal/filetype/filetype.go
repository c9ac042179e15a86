// Package filetype classifies configuration files by extension and basename.
package filetype

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Type is a configuration file syntax.
type Type string

const (
	Auto       Type = "auto"
	YAML       Type = "yaml"
	JSON       Type = "json"
	Env        Type = "env"
	INI        Type = "ini"
	TOML       Type = "toml"
	HCL        Type = "hcl"
	Properties Type = "properties"
	XML        Type = "xml"
	Dockerfile Type = "dockerfile"
	Text       Type = "text"
)

// All lists the selectable types in help order.
func All() []Type {
	return []Type{Auto, YAML, JSON, Env, INI, TOML, HCL, Properties, XML, Dockerfile, Text}
}

var byExt = map[string]Type{
	".yaml":       YAML,
	".yml":        YAML,
	".json":       JSON,
	".jsonc":      Text,
	".env":        Env,
	".ini":        INI,
	".cfg":        INI,
	".conf":       INI,
	".cnf":        INI,
	".toml":       TOML,
	".tf":         HCL,
	".tfvars":     HCL,
	".hcl":        HCL,
	".nomad":      HCL,
	".properties": Properties,
	".xml":        XML,
	".config":     XML,
	".txt":        Text,
}

var byName = map[string]Type{
	"dockerfile":    Dockerfile,
	"containerfile": Dockerfile,
	".env":          Env,
	".npmrc":        INI,
	".pypirc":       INI,
	".gitconfig":    INI,
	".netrc":        Text,
}

// Detect returns the type of path, or "" when it is not a recognized
// configuration file.
func Detect(path string) Type {
	base := strings.ToLower(filepath.Base(path))
	if t, ok := byName[base]; ok {
		return t
	}
	// .env.local, .env.production, Dockerfile.dev ...
	if strings.HasPrefix(base, ".env.") {
		return Env
	}
	if strings.HasPrefix(base, "dockerfile.") || strings.HasSuffix(base, ".dockerfile") {
		return Dockerfile
	}
	if t, ok := byExt[filepath.Ext(base)]; ok {
		return t
	}
	return ""
}

// Parse validates a -t/--filetype value.
func Parse(s string) (Type, error) {
	v := Type(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "":
		return Auto, nil
	case "yml":
		return YAML, nil
	}
	for _, t := range All() {
		if v == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown file type %q (want one of %s)", s, Names())
}

// Names joins All for help text and error messages.
func Names() string {
	parts := make([]string, 0, len(All()))
	for _, t := range All() {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, "|")
}

// Structured reports whether t is parsed as a document for key/value checks.
func (t Type) Structured() bool {
	return t == YAML || t == JSON
}
