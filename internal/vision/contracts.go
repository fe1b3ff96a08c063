// Package vision is the boundary to an optional vision-capable model
// service. Responses are schema-loose by contract: unknown or missing fields
// are absent, never errors.
package vision

import "context"

// Fields is the parsed-and-validated shape of a vision response. Pointers
// distinguish "the service did not return this field" from an empty value.
type Fields struct {
	DocType           *string `json:"doc_type,omitempty"`
	Vendor            *string `json:"vendor,omitempty"`
	Amount            *string `json:"amount,omitempty"` // dot-decimal string
	Currency          *string `json:"currency,omitempty"`
	Date              *string `json:"date,omitempty"` // ISO YYYY-MM-DD
	BuildingCandidate *string `json:"building_candidate,omitempty"`
}

// Extractor is the interface the pipeline depends on. Both calls are
// best-effort: implementations return an error for transport or schema
// failures, which callers treat as "no vision data".
type Extractor interface {
	// ExtractFields runs a full-field query over a rendered page image.
	ExtractFields(ctx context.Context, image []byte) (Fields, error)
	// ExtractVendor runs the cheaper vendor-only re-query.
	ExtractVendor(ctx context.Context, image []byte) (*string, error)
}
