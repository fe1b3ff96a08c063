package vendors

import (
	"regexp"
	"sort"
	"strings"
)

// Candidate is a resolved vendor name with its confidence.
type Candidate struct {
	Name       string
	Confidence float64
}

// Tactic attempts one vendor-resolution strategy. A nil result means the
// tactic found nothing and the next one in the chain should run.
type Tactic interface {
	TryResolve(doc *Document) *Candidate
}

var reContextMarker = regexp.MustCompile(`(?i)(telefon|tel\.?:|fax|e-?mail|@|www\.|https?://|ust[-.\s]?id|ust\.?-?idnr|umsatzsteuer|vat|de[0-9]{9}|iban|bic|steuernr|steuer-?nr)`)

// aliasTactic matches configured literal keys against the document head.
// Short keys additionally need a contact/VAT/IBAN marker in the head window,
// so two-letter abbreviations cannot match noise.
type aliasTactic struct {
	aliases map[string]string
}

func (t aliasTactic) TryResolve(doc *Document) *Candidate {
	if len(t.aliases) == 0 {
		return nil
	}
	keys := make([]string, 0, len(t.aliases))
	for k := range t.aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	hasContext := reContextMarker.MatchString(doc.headLower)
	for _, k := range keys {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		rx, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(key) + `\b`)
		if err != nil {
			continue
		}
		if !rx.MatchString(doc.headLower) {
			continue
		}
		if len([]rune(key)) <= doc.cfg.ShortKeyMaxLen && !hasContext {
			continue
		}
		return &Candidate{Name: t.aliases[k], Confidence: ConfAlias}
	}
	return nil
}

var (
	reLegalForm = regexp.MustCompile(`(?i)\b(gmbh|ag|kg|ohg|gbr|e\.v\.|mbh|ug)\b`)
	reDocWord   = regexp.MustCompile(`(?i)(angebot|rechnung|lieferschein)`)
	reVATMarker = regexp.MustCompile(`(?i)(ust[-.\s]?id|ust\.?-?idnr|umsatzsteuer|vat|de[0-9]{9})`)
	reIBANBIC   = regexp.MustCompile(`(?i)\b(iban|bic)\b`)
	reContact   = regexp.MustCompile(`(?i)(telefon|tel\.?:|fax|e-?mail|@|www\.|https?://|\+49)`)

	rePolite       = regexp.MustCompile(`(?i)(sehr geehrte|mit freundlichen|freundliche gr(ü|ue)(ß|ss)e|vielen dank|gerne stehen wir)`)
	reTableHeader  = regexp.MustCompile(`(?i)\b(beschreibung|menge|einzelpreis|gesamtpreis|e-preis|g-preis|mwst|netto|brutto|artikel|anzahl|einheit|pos\.?)\b`)
	reLineItem     = regexp.MustCompile(`(?i)\b(inkl|zzgl|montage|demontage|material|arbeitszeit|pauschale|stundensatz|anfahrt|entsorgung)\b`)
	reReceiverRole = regexp.MustCompile(`(?i)(verwaltung|hausverwaltung|weg |wohnungseigent|eigent(ü|ue)mergemeinschaft|im auftrag|f(ü|ue)r die|kunden-?nr)`)
)

// headerScoreTactic picks the most sender-looking header or footer line.
// Legal-form hints and proximity to contact/VAT/IBAN markers push a line up;
// table headers, line items, polite phrases and receiver roles disqualify it.
type headerScoreTactic struct{}

func (headerScoreTactic) TryResolve(doc *Document) *Candidate {
	markerLines := markerIndex(doc.Lines)

	bestScore := 0
	bestLine := ""
	for _, i := range doc.scanWindow() {
		line := doc.Lines[i]
		n := len([]rune(line))
		if n < 3 || n > 80 {
			continue
		}
		if punctOverload(line) {
			continue
		}
		if rePolite.MatchString(line) || reTableHeader.MatchString(line) ||
			reLineItem.MatchString(line) || reReceiverRole.MatchString(line) {
			continue
		}

		score := 0
		if reLegalForm.MatchString(line) {
			score += scoreLegalForm
		}
		score += min(scoreLengthCap, n/10)
		if markerLines.near(i, markerRadius, markerContact) {
			score += scoreContact
		}
		if markerLines.near(i, markerRadius, markerVAT) {
			score += scoreVATID
		}
		if markerLines.near(i, markerRadius, markerIBAN) {
			score += scoreIBAN
		}
		if reDocWord.MatchString(line) {
			score += scoreDocTypeHit
		}

		if score > bestScore {
			bestScore = score
			bestLine = line
		}
	}

	if bestLine == "" {
		return nil
	}
	return &Candidate{Name: bestLine, Confidence: tierConfidence(bestScore)}
}

func tierConfidence(score int) float64 {
	switch {
	case score >= tierHigh:
		return ConfScoreHigh
	case score >= tierSolid:
		return ConfScoreSolid
	case score >= tierWeak:
		return ConfScoreWeak
	default:
		return ConfScoreFloor
	}
}

// punctOverload rejects prose-like lines; a vendor header carries at most a
// couple of separators.
func punctOverload(line string) bool {
	count := 0
	for _, r := range line {
		switch r {
		case ',', ';', ':', '!', '?':
			count++
		}
	}
	return count >= 3
}

type markerKind int

const (
	markerContact markerKind = iota
	markerVAT
	markerIBAN
)

type markerSet map[markerKind][]int

func markerIndex(lines []string) markerSet {
	ms := make(markerSet, 3)
	for i, l := range lines {
		if reContact.MatchString(l) {
			ms[markerContact] = append(ms[markerContact], i)
		}
		if reVATMarker.MatchString(l) {
			ms[markerVAT] = append(ms[markerVAT], i)
		}
		if reIBANBIC.MatchString(l) {
			ms[markerIBAN] = append(ms[markerIBAN], i)
		}
	}
	return ms
}

func (ms markerSet) near(line, radius int, kind markerKind) bool {
	for _, i := range ms[kind] {
		if i >= line-radius && i <= line+radius {
			return true
		}
	}
	return false
}
