// Package docfields scans raw document text for the locally extractable
// fields: document type, monetary amount, issue date and a building
// candidate, each with a heuristic confidence.
package docfields

// Config holds the trigger lists and window sizes for local field
// extraction. Zero values fall back to the defaults below; the lists and
// thresholds are empirically tuned against real invoices and should be
// overridden rather than re-derived.
type Config struct {
	// AmountTriggers are tried in priority order; a German-format amount
	// within AmountWindow characters after a trigger is a candidate.
	AmountTriggers []string
	AmountWindow   int

	// BuildingTriggers mark lines that start a building-candidate block.
	BuildingTriggers []string
	// CandidateFollowLines is how many lines after the trigger line join
	// the candidate block.
	CandidateFollowLines int
	// CandidateMaxLen caps the joined candidate block.
	CandidateMaxLen int
	// StreetScanLines bounds the street-pattern fallback scan.
	StreetScanLines int
}

// Defaults for Config.
const (
	DefaultAmountWindow         = 60
	DefaultCandidateFollowLines = 2
	DefaultCandidateMaxLen      = 400
	DefaultStreetScanLines      = 70
)

// Confidence tiers for locally extracted fields.
const (
	ConfAmountTriggered  = 0.9  // trigger hit, all candidates agree
	ConfAmountAmbiguous  = 0.6  // trigger hit, candidates differ
	ConfAmountMaxUnique  = 0.35 // no trigger, unique maximum
	ConfAmountMaxShared  = 0.2  // no trigger, maximum occurs twice+
	ConfAmountNone       = 0.1
	ConfDate             = 0.75
	ConfDateNone         = 0.1
	ConfDocTypeUnknown   = 0.3
	ConfBuildingTrigger  = 0.55
	ConfBuildingStreet   = 0.35
	ConfBuildingNone     = 0.15
)

// DefaultAmountTriggers in priority order.
func DefaultAmountTriggers() []string {
	return []string{
		"gesamtbetrag",
		"rechnungsbetrag",
		"zu zahlen",
		"zahlbetrag",
		"endbetrag",
		"summe",
		"brutto",
		"gesamt",
		"betrag",
	}
}

// DefaultBuildingTriggers marks context lines naming the property a
// document relates to.
func DefaultBuildingTriggers() []string {
	return []string{
		"objekt",
		"weg",
		"liegenschaft",
		"baustelle",
		"leistungsort",
		"adresse",
		"verbrauchsstelle",
		"lieferstelle",
		"lieferadresse",
		"objektnr",
		"objekt-nr",
		"bauvorhaben",
		"leistungsadresse",
		"objektadresse",
	}
}

func (c Config) withDefaults() Config {
	if len(c.AmountTriggers) == 0 {
		c.AmountTriggers = DefaultAmountTriggers()
	}
	if c.AmountWindow <= 0 {
		c.AmountWindow = DefaultAmountWindow
	}
	if len(c.BuildingTriggers) == 0 {
		c.BuildingTriggers = DefaultBuildingTriggers()
	}
	if c.CandidateFollowLines <= 0 {
		c.CandidateFollowLines = DefaultCandidateFollowLines
	}
	if c.CandidateMaxLen <= 0 {
		c.CandidateMaxLen = DefaultCandidateMaxLen
	}
	if c.StreetScanLines <= 0 {
		c.StreetScanLines = DefaultStreetScanLines
	}
	return c
}
