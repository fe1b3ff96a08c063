package constants

// DocType is the canonical document classification label.
type DocType string

// Stable values (these exact strings appear in results and filenames).
const (
	DocTypeInvoice      DocType = "Rechnung"
	DocTypeOffer        DocType = "Angebot"
	DocTypeDeliveryNote DocType = "Lieferschein"
	DocTypeUnknown      DocType = "Dokument"
)

// Fallback values for fields that could not be resolved.
const (
	UnknownVendor   = "UNK"
	DefaultCurrency = "EUR"
)
