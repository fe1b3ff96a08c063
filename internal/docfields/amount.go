package docfields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// German decimal format: 1.234,56
const amountPattern = `[0-9]{1,3}(?:\.[0-9]{3})*,[0-9]{2}`

var reAmountAny = regexp.MustCompile(`\b(` + amountPattern + `)\b`)

var (
	reAmountClean = regexp.MustCompile(`[^0-9.,\-]`)
	reAmountEUR   = regexp.MustCompile(`(?i)EUR`)
)

// ParseGermanAmount parses a German-format amount ("1.234,56", with optional
// currency noise) into a decimal. Returns nil when nothing parses.
func ParseGermanAmount(s string) *decimal.Decimal {
	s = strings.ReplaceAll(s, "€", "")
	s = reAmountEUR.ReplaceAllString(s, "")
	s = reAmountClean.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// extractAmount finds the monetary total. Trigger-window hits win over the
// whole-text maximum; each path carries its own confidence tier.
func (e *Extractor) extractAmount(text string) (*decimal.Decimal, float64) {
	type hit struct {
		value decimal.Decimal
		pos   int
	}
	var hits []hit

	for _, trig := range e.cfg.AmountTriggers {
		pat := strings.ReplaceAll(regexp.QuoteMeta(trig), ` `, `\s+`)
		rx := regexp.MustCompile(`(?i)` + pat + `[^0-9]{0,` + strconv.Itoa(e.cfg.AmountWindow) + `}(` + amountPattern + `)`)
		for _, m := range rx.FindAllStringSubmatchIndex(text, -1) {
			raw := text[m[2]:m[3]]
			if v := ParseGermanAmount(raw); v != nil {
				hits = append(hits, hit{value: *v, pos: m[2]})
			}
		}
	}

	if len(hits) > 0 {
		// last occurrence textually
		last := hits[0]
		allEqual := true
		for _, h := range hits {
			if h.pos > last.pos {
				last = h
			}
			if !h.value.Equal(hits[0].value) {
				allEqual = false
			}
		}
		if allEqual {
			return &last.value, ConfAmountTriggered
		}
		return &last.value, ConfAmountAmbiguous
	}

	// no trigger hit: scan everything and take the maximum
	var all []decimal.Decimal
	for _, m := range reAmountAny.FindAllStringSubmatch(text, -1) {
		if v := ParseGermanAmount(m[1]); v != nil {
			all = append(all, *v)
		}
	}
	if len(all) == 0 {
		return nil, ConfAmountNone
	}
	mx := all[0]
	for _, v := range all[1:] {
		if v.GreaterThan(mx) {
			mx = v
		}
	}
	count := 0
	for _, v := range all {
		if v.Equal(mx) {
			count++
		}
	}
	if count == 1 {
		return &mx, ConfAmountMaxUnique
	}
	return &mx, ConfAmountMaxShared
}
