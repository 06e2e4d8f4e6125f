// Package domainutil derives registered (apex) domains from hostnames using
// the public suffix list.
package domainutil

import (
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Registered returns the registered domain for a hostname, e.g.
// "api.dev.example.co.uk" -> "example.co.uk". Returns an empty string when the
// hostname has no registrable part (bare TLDs, wildcards, garbage).
func Registered(host string) string {
	host = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(host, ".")))
	if host == "" || strings.Contains(host, "*") {
		return ""
	}

	apex, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return apex
}

// RegisteredSet collapses a list of hostnames into their sorted, deduplicated
// registered domains, skipping entries with no registrable part.
func RegisteredSet(hosts []string) []string {
	seen := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		if apex := Registered(h); apex != "" {
			seen[apex] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for apex := range seen {
		out = append(out, apex)
	}
	sort.Strings(out)
	return out
}
