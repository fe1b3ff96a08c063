// Package vendors resolves the canonical issuing vendor of a document via an
// ordered chain of tactics: alias-map lookup, then header-line scoring, each
// guarded against "this is the receiver, not the sender" mistakes.
package vendors

// Config holds the window sizes, score weights and confidence tiers of the
// resolver. The values are empirically tuned; override, don't re-derive.
type Config struct {
	// HeadLines is the alias-lookup window from the top of the document.
	HeadLines int
	// ScorerHeadLines / ScorerTailLines bound the header-candidate scan.
	ScorerHeadLines int
	ScorerTailLines int
	// ShortKeyMaxLen: alias keys at or below this length need a
	// contact/VAT/IBAN marker in the head window to count.
	ShortKeyMaxLen int
	// MaxNameLen caps the sanitized vendor name.
	MaxNameLen int
	// GuardSimilarity: a vendor this similar to a building contact name is
	// rejected as a mislabelled receiver.
	GuardSimilarity int
}

const (
	DefaultHeadLines       = 30
	DefaultScorerHeadLines = 60
	DefaultScorerTailLines = 90
	DefaultShortKeyMaxLen  = 3
	DefaultMaxNameLen      = 80
	DefaultGuardSimilarity = 82
)

// Score weights for the header-candidate scorer.
const (
	scoreLegalForm  = 18
	scoreContact    = 18
	scoreVATID      = 18
	scoreIBAN       = 12
	scoreDocTypeHit = -8
	scoreLengthCap  = 8
	markerRadius    = 4 // lines
)

// Confidence tiers for resolved vendors.
const (
	ConfAlias      = 0.85
	ConfScoreHigh  = 0.85 // score >= 42
	ConfScoreSolid = 0.70 // score >= 30
	ConfScoreWeak  = 0.55 // score >= 22
	ConfScoreFloor = 0.35
	ConfUnknown    = 0.15

	tierHigh  = 42
	tierSolid = 30
	tierWeak  = 22
)

func (c Config) withDefaults() Config {
	if c.HeadLines <= 0 {
		c.HeadLines = DefaultHeadLines
	}
	if c.ScorerHeadLines <= 0 {
		c.ScorerHeadLines = DefaultScorerHeadLines
	}
	if c.ScorerTailLines <= 0 {
		c.ScorerTailLines = DefaultScorerTailLines
	}
	if c.ShortKeyMaxLen <= 0 {
		c.ShortKeyMaxLen = DefaultShortKeyMaxLen
	}
	if c.MaxNameLen <= 0 {
		c.MaxNameLen = DefaultMaxNameLen
	}
	if c.GuardSimilarity <= 0 {
		c.GuardSimilarity = DefaultGuardSimilarity
	}
	return c
}
