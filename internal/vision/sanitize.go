package vision

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

var (
	reISODate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reGermanDate = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
	reDotDecimal = regexp.MustCompile(`^-?\d+(\.\d{1,2})?$`)
	reDEAmount   = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})*,\d{2}$`)
)

// NormalizeAndSanitizeJSON makes a loose vision response schema-valid:
// - drops nulls, empty strings and unknown keys
// - coerces numeric amounts to dot-decimal strings, converts German format
// - converts DD.MM.YYYY dates to ISO, drops unparseable ones
// - uppercases the currency code
// All fields are optional, so dropping an offender never invalidates the
// document as a whole.
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	drop := func(k, why string) {
		delete(m, k)
		dropped = append(dropped, k+"("+why+")")
	}

	allowed := map[string]struct{}{
		"doc_type": {}, "vendor": {}, "amount": {},
		"currency": {}, "date": {}, "building_candidate": {},
	}
	for k := range m {
		if _, ok := allowed[k]; !ok {
			drop(k, "unknown")
		}
	}

	// trim strings, drop nulls and empties
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			drop(k, "null")
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				drop(k, "empty")
			} else {
				m[k] = s
			}
		}
	}

	if v, ok := m["amount"]; ok {
		switch t := v.(type) {
		case float64:
			m["amount"] = fmt.Sprintf("%.2f", t)
		case string:
			switch {
			case reDotDecimal.MatchString(t):
				// already fine
			case reDEAmount.MatchString(t):
				s := strings.ReplaceAll(t, ".", "")
				m["amount"] = strings.Replace(s, ",", ".", 1)
			default:
				drop("amount", "format")
			}
		default:
			drop("amount", "type")
		}
	}

	if v, ok := m["date"].(string); ok {
		switch {
		case reISODate.MatchString(v):
			// already fine
		case reGermanDate.MatchString(v):
			g := reGermanDate.FindStringSubmatch(v)
			m["date"] = g[3] + "-" + g[2] + "-" + g[1]
		default:
			drop("date", "format")
		}
	}

	if v, ok := m["currency"].(string); ok {
		c := strings.ToUpper(v)
		if len(c) != 3 {
			drop("currency", "length")
		} else {
			m["currency"] = c
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("vision.extract.sanitized", "dropped", dropped)
	}
	return out, dropped, nil
}
