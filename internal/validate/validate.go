// Package validate holds cheap structural checks run on a secret value after
// its rule's pattern matched. They drop look-alikes the regex alone accepts.
package validate

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

const (
	base62     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	upperAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	base64Like = base62 + "+/="
)

// IsAlphabet returns true if all characters in s are in allowed.
func IsAlphabet(s, allowed string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(allowed, s[i]) < 0 {
			return false
		}
	}
	return true
}

// IsBase64URLNoPad reports whether s is valid unpadded base64url.
func IsBase64URLNoPad(s string) bool {
	if s == "" {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}

// JWT reports whether s has three segments whose header decodes to a JSON
// object naming an algorithm. The signature is not decoded.
func JWT(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 || !IsBase64URLNoPad(parts[1]) {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	var hdr map[string]any
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return false
	}
	_, ok := hdr["alg"]
	return ok
}

// AWSAccessKeyID checks a known prefix followed by 16 upper-case
// alphanumerics.
func AWSAccessKeyID(s string) bool {
	if len(s) != 20 {
		return false
	}
	switch s[:4] {
	case "AKIA", "ASIA", "ABIA", "ACCA":
	default:
		return false
	}
	return IsAlphabet(s[4:], upperAlnum)
}

// AWSSecretKey checks the length and base64-like alphabet of a secret access
// key and rejects values without mixed case, such as hex digests.
func AWSSecretKey(s string) bool {
	if len(s) != 40 || !IsAlphabet(s, base64Like) {
		return false
	}
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}

// GitHubToken checks a gh[pousr]_ prefix followed by at least 36 base62
// characters.
func GitHubToken(s string) bool {
	if len(s) < 4 || !strings.HasPrefix(s, "gh") || s[3] != '_' || !strings.ContainsRune("pousr", rune(s[2])) {
		return false
	}
	tail := s[4:]
	return len(tail) >= 36 && IsAlphabet(tail, base62)
}
