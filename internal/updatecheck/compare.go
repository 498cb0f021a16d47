package updatecheck

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// CompareFunc reports whether remote is newer than current.
type CompareFunc func(remote, current string) bool

const (
	PolicyLexical = "lexical"
	PolicySemver  = "semver"
)

// LexicalNewer compares by byte order, so "10.0.0" sorts before "9.0.0".
// The store listing has always been compared this way.
func LexicalNewer(remote, current string) bool {
	return remote > current
}

// SemverNewer compares dotted numeric versions component-wise. Strings that
// are not valid versions fall back to LexicalNewer.
func SemverNewer(remote, current string) bool {
	r, rOK := normalizeSemver(remote)
	c, cOK := normalizeSemver(current)
	if !rOK || !cOK {
		return LexicalNewer(remote, current)
	}
	return semver.Compare(r, c) > 0
}

func PolicyFunc(name string) (CompareFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyLexical:
		return LexicalNewer, nil
	case PolicySemver:
		return SemverNewer, nil
	}
	return nil, fmt.Errorf("unknown compare policy %q", name)
}

func normalizeSemver(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", false
	}
	return v, true
}
