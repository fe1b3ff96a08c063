package vendors

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/postbeschriftung/extraction/constants"
)

var (
	// Address cues: a vendor header that runs into its own address line gets
	// cut at the first street-type word, Postfach, PLZ hint, 5-digit postal
	// code or a DE/AT country prefix.
	// street-type words match as compound suffixes too ("Hauptstraße")
	// "ring" stays word-bounded: as a suffix it would eat Catering & Co.
	reAddressCue = regexp.MustCompile(`(?i)\p{L}*stra(ß|ss)e\b|\bstr\.|\p{L}*(weg|allee|platz|gasse|damm|ufer)\b|\b(ring|postfach|plz|de-\d{4,5}|at-\d{4})\b|\b\d{5}\b`)
	reSeparator  = regexp.MustCompile(`[|·•]`)
)

// Sanitize trims a raw vendor candidate down to the name itself: cut at the
// first address cue or separator, strip trailing punctuation, cap the
// length. An empty remainder becomes UNK.
func Sanitize(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxNameLen
	}
	s := strings.TrimSpace(name)

	if loc := reSeparator.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	if loc := reAddressCue.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}

	s = strings.TrimRight(strings.TrimSpace(s), ",;:.-")
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > maxLen {
		r := []rune(s)
		s = strings.TrimSpace(string(r[:maxLen]))
	}
	if s == "" {
		return constants.UnknownVendor
	}
	return s
}
