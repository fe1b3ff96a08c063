package docfields

import "regexp"

var (
	reDateGerman = regexp.MustCompile(`\b(\d{2})\.(\d{2})\.(\d{4})\b`)
	reDateISO    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

// extractDate finds the issue date: DD.MM.YYYY wins over a literal ISO date.
// The result is always ISO YYYY-MM-DD.
func extractDate(text string) (string, float64) {
	if m := reDateGerman.FindStringSubmatch(text); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1], ConfDate
	}
	if m := reDateISO.FindStringSubmatch(text); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3], ConfDate
	}
	return "", ConfDateNone
}
