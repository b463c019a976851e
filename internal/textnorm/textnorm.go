// Package textnorm normalizes feed text and derives stable dedup fingerprints.
package textnorm

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"
)

var (
	tagRE = regexp.MustCompile(`<[^>]+>`)
	urlRE = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
	wsRE  = regexp.MustCompile(`\s+`)
)

// Clean strips HTML tags and URLs, collapses whitespace and trims.
// Total: empty input yields empty output, never an error.
func Clean(raw string) string {
	s := tagRE.ReplaceAllString(raw, " ")
	s = urlRE.ReplaceAllString(s, "")
	s = wsRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripLinks removes URLs only. Used as a final guard on outgoing messages
// so no link ever reaches subscribers, whatever the template produced.
func StripLinks(s string) string {
	return strings.TrimSpace(urlRE.ReplaceAllString(s, ""))
}

// Fingerprint joins parts with a separator, hashes, and truncates to 16 hex
// chars (64 bits). Deterministic across restarts; that determinism is what
// makes the dedup store meaningful after a redeploy.
func Fingerprint(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])[:16]
}

// HasArabic reports whether s contains at least one Arabic-script rune.
func HasArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}
