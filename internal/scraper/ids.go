package scraper

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
)

// PostID joins a platform prefix and a native id.
func PostID(prefix, nativeID string) string {
	return prefix + "_" + nativeID
}

// HashID is the fallback native id for results without a stable identifier:
// an FNV-1a hash of the URL reduced to 8 digits. Good enough for dedup, not
// collision-proof.
func HashID(rawURL string) string {
	h := fnv.New32a()
	h.Write([]byte(rawURL))
	return fmt.Sprintf("%08d", h.Sum32()%100000000)
}

// Absolute resolves href against base. Returns href unchanged when either fails to parse.
func Absolute(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// LastPathSegment returns the last non-empty path segment of rawURL.
func LastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return parts[len(parts)-1]
}

// QueryParam returns query parameter key of rawURL.
func QueryParam(rawURL, key string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
