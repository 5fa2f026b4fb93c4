package reccontext

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"aiVisibility/domain"
)

// homepageOnlyHash is the sentinel page-set hash for scans with no
// explicit page set.
const homepageOnlyHash = "homepage-only"

// NormalizeDomain canonicalizes a user-supplied domain: lowercase, scheme
// stripped, leading www. stripped, port stripped, path/trailing slash
// stripped. An empty result is a validation error.
func NormalizeDomain(raw string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	if i := strings.IndexByte(d, ':'); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimSuffix(d, ".")
	if d == "" {
		return "", domain.NewValidationError("domain", "empty after normalization")
	}
	return d, nil
}

// normalizePageSet lowercases, canonicalizes, dedupes and sorts page
// paths so that path order and cosmetic differences never split contexts.
func normalizePageSet(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if len(p) > 1 {
			p = strings.TrimSuffix(p, "/")
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// pageSetHash collapses a normalized page set into a stable digest, with
// the homepage-only sentinel for empty sets.
func pageSetHash(paths []string) string {
	normalized := normalizePageSet(paths)
	if len(normalized) == 0 {
		return homepageOnlyHash
	}
	sum := sha256.Sum256([]byte(strings.Join(normalized, "\n")))
	return hex.EncodeToString(sum[:])
}

// ContextKey is the deterministic identity of (account, domain, page set).
// Two scans with the same key share one recommendation context.
func ContextKey(accountID uint, normalizedDomain string, pageSet []string) string {
	payload := fmt.Sprintf("%d|%s|%s", accountID, normalizedDomain, pageSetHash(pageSet))
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
