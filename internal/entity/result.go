package entity

// BuildingMatch reports the outcome of matching a building candidate against
// the registry. On rejection ObjectNumber is nil while MatchedLabel and Score
// still carry the best attempt for diagnostics.
type BuildingMatch struct {
	ObjectNumber *string `json:"object_number"`
	MatchedLabel *string `json:"matched_label"`
	Score        *int    `json:"score"`
}

// Confidence holds the heuristic evidence-density score per extracted field.
// These are not calibrated probabilities; their only contract is monotonic
// use for fallback-triggering and low-trust flagging.
type Confidence struct {
	DocType  float64 `json:"doc_type"`
	Vendor   float64 `json:"vendor"`
	Amount   float64 `json:"amount"`
	Building float64 `json:"building"`
}

// ExtractionResult is the immutable output of one extraction run. Field names
// and nesting are a compatibility surface for downstream consumers.
type ExtractionResult struct {
	DocType           string         `json:"doc_type"`
	Vendor            string         `json:"vendor"`
	Amount            *Money         `json:"amount"`
	Currency          string         `json:"currency"`
	Date              *string        `json:"date"`
	BuildingMatch     BuildingMatch  `json:"building_match"`
	SuggestedFilename string         `json:"suggested_filename"`
	Confidence        Confidence     `json:"confidence"`
	Debug             map[string]any `json:"debug,omitempty"`
}
