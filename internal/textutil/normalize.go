// Package textutil provides the string canonicalization and similarity
// scoring underneath vendor resolution and building matching.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpace = regexp.MustCompile(`\s+`)
	// everything outside lowercase alphanumerics, umlauts, space, ".", "-", "/"
	reDrop = regexp.MustCompile(`[^a-z0-9äöü .\-/]`)
)

// Normalize canonicalizes a string for comparison: NFC composition,
// lowercasing, ß→ss folding, irrelevant punctuation replaced by space,
// whitespace collapsed. Total function, never fails.
func Normalize(s string) string {
	s, _, _ = transform.String(norm.NFC, s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ß", "ss")
	s = reSpace.ReplaceAllString(s, " ")
	s = reDrop.ReplaceAllString(s, " ")
	s = reSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
