package config

import (
	"fmt"
	"net/url"

	"github.com/gobwas/glob"
)

// SiteRules decides which documents capture is enabled on. Rules match
// against host plus path (no scheme, no fragment), so "example.com/**"
// covers a whole site and "example.com/private/*" can carve part of it out.
type SiteRules struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// SiteRules compiles the configured allow and deny globs.
func (c *Config) SiteRules() (*SiteRules, error) {
	return NewSiteRules(c.Sites.Allowed, c.Sites.Denied)
}

// NewSiteRules compiles rule sets. Denied patterns take precedence; when no
// allowed patterns are given, everything not denied is allowed.
func NewSiteRules(allowed, denied []string) (*SiteRules, error) {
	r := &SiteRules{}
	for _, pattern := range allowed {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("config: invalid allowed site pattern %q: %w", pattern, err)
		}
		r.allowed = append(r.allowed, g)
	}
	for _, pattern := range denied {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("config: invalid denied site pattern %q: %w", pattern, err)
		}
		r.denied = append(r.denied, g)
	}
	return r, nil
}

// Allows reports whether capture is enabled for the given document address.
func (r *SiteRules) Allows(rawURL string) bool {
	target := normalizeSite(rawURL)

	for _, pattern := range r.denied {
		if pattern.Match(target) {
			return false
		}
	}
	if len(r.allowed) == 0 {
		return true
	}
	for _, pattern := range r.allowed {
		if pattern.Match(target) {
			return true
		}
	}
	return false
}

// normalizeSite reduces an address to host plus path for matching.
func normalizeSite(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host + u.Path
}
