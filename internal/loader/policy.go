package loader

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type Decision int

const (
	InSurface Decision = iota
	External
)

func (d Decision) String() string {
	if d == External {
		return "external"
	}
	return "in-surface"
}

var DefaultAllow = []string{"newmd.eu.org", "newmd.eu.org/**"}

// Policy decides whether a link followed from inside the content stays in
// the surface. Patterns match "host/path" with doublestar syntax.
type Policy struct {
	allow []string
}

func NewPolicy(patterns []string) (*Policy, error) {
	if len(patterns) == 0 {
		patterns = DefaultAllow
	}
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid allow pattern %q", p)
		}
		out = append(out, strings.ToLower(p))
	}
	return &Policy{allow: out}, nil
}

func (p *Policy) Decide(rawURL string) Decision {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return External
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return External
	}
	key := strings.ToLower(u.Hostname()) + "/" + strings.Trim(u.EscapedPath(), "/")
	key = strings.TrimSuffix(key, "/")
	for _, pattern := range p.allow {
		if ok, _ := doublestar.Match(pattern, key); ok {
			return InSurface
		}
	}
	return External
}
