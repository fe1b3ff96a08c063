package docfields

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/postbeschriftung/extraction/constants"
)

// Fields is the outcome of one local extraction pass over raw text.
// Amount is nil and Date/BuildingCandidate empty when nothing parsed;
// the confidences then sit at their documented floors.
type Fields struct {
	DocType           constants.DocType
	Amount            *decimal.Decimal
	Date              string // ISO YYYY-MM-DD, or ""
	BuildingCandidate string

	DocTypeConfidence  float64
	AmountConfidence   float64
	DateConfidence     float64
	BuildingConfidence float64
}

// Extractor scans raw text for the locally derivable fields. Safe for
// concurrent use; it holds only immutable configuration.
type Extractor struct {
	cfg Config
}

func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg.withDefaults()}
}

var docTypeRules = []struct {
	re    *regexp.Regexp
	label constants.DocType
	conf  float64
}{
	{regexp.MustCompile(`(?i)\brechnung\b`), constants.DocTypeInvoice, 0.90},
	{regexp.MustCompile(`(?i)\bangebot\b`), constants.DocTypeOffer, 0.85},
	{regexp.MustCompile(`(?i)\blieferschein\b`), constants.DocTypeDeliveryNote, 0.85},
}

// Extract never fails: malformed or empty text degrades to defaults with
// floor confidences.
func (e *Extractor) Extract(text string) Fields {
	lines := nonEmptyLines(text)

	f := Fields{
		DocType:            constants.DocTypeUnknown,
		DocTypeConfidence:  ConfDocTypeUnknown,
		AmountConfidence:   ConfAmountNone,
		DateConfidence:     ConfDateNone,
		BuildingConfidence: ConfBuildingNone,
	}

	for _, r := range docTypeRules {
		if r.re.MatchString(text) {
			f.DocType = r.label
			f.DocTypeConfidence = r.conf
			break
		}
	}

	f.Amount, f.AmountConfidence = e.extractAmount(text)
	f.Date, f.DateConfidence = extractDate(text)
	f.BuildingCandidate, f.BuildingConfidence = e.extractBuildingCandidate(lines)

	return f
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(strings.TrimSuffix(l, "\r")); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
