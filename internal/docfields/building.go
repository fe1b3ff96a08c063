package docfields

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reStreet   = regexp.MustCompile(`(?i)(straße|str\.|weg|allee|platz|gasse|ring|damm|ufer)`)
	rePLZCity  = regexp.MustCompile(`\b\d{5}\s+\S+`)
	reCommaCty = regexp.MustCompile(`,\s*\p{L}{2,}`)
)

// extractBuildingCandidate finds the text block most likely naming the
// property. Trigger keywords win; otherwise a street-looking line adjacent
// to a postal-code/city line is taken at lower confidence.
func (e *Extractor) extractBuildingCandidate(lines []string) (string, float64) {
	for i, l := range lines {
		ll := strings.ToLower(l)
		hit := false
		for _, t := range e.cfg.BuildingTriggers {
			if strings.Contains(ll, t) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		chunk := []string{l}
		for j := 1; j <= e.cfg.CandidateFollowLines; j++ {
			if i+j < len(lines) {
				chunk = append(chunk, lines[i+j])
			}
		}
		return truncate(strings.Join(chunk, " "), e.cfg.CandidateMaxLen), ConfBuildingTrigger
	}

	// street-pattern fallback over the document head
	limit := min(e.cfg.StreetScanLines, len(lines))
	for i := 0; i < limit; i++ {
		if !reStreet.MatchString(lines[i]) {
			continue
		}
		if cityLine, ok := adjacentCityLine(lines, i); ok {
			cand := lines[i]
			if cityLine != "" && cityLine != lines[i] {
				cand += " " + cityLine
			}
			return truncate(cand, e.cfg.CandidateMaxLen), ConfBuildingStreet
		}
	}

	return "", ConfBuildingNone
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// adjacentCityLine looks for a postal-code/city pattern on the street line
// itself or on a directly neighboring line.
func adjacentCityLine(lines []string, i int) (string, bool) {
	if rePLZCity.MatchString(lines[i]) || reCommaCty.MatchString(lines[i]) {
		return lines[i], true
	}
	for _, j := range []int{i + 1, i - 1} {
		if j < 0 || j >= len(lines) {
			continue
		}
		if rePLZCity.MatchString(lines[j]) || reCommaCty.MatchString(lines[j]) {
			return lines[j], true
		}
	}
	return "", false
}
