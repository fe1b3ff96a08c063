// Package filename composes the canonical output filename from resolved
// document fields.
package filename

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/postbeschriftung/extraction/constants"
)

// Input carries the resolved fields a filename is built from. Empty strings
// and a nil amount are simply left out.
type Input struct {
	ObjectNumber string
	Date         string // ISO YYYY-MM-DD
	DocType      string
	Vendor       string
	Amount       *decimal.Decimal
}

var (
	reUnderscores = regexp.MustCompile(`_+`)
	reInvalid     = regexp.MustCompile(`[^A-Za-z0-9._\-äöüÄÖÜß,]`)
	dateSeps      = strings.NewReplacer("-", "", ".", "")
)

// Build joins the present parts with underscores and sanitizes the result
// into a safe, predictable PDF filename, e.g.
// "100_20240305_Rechnung_ACME_GmbH_199,50.pdf".
func Build(in Input) string {
	parts := make([]string, 0, 5)
	if in.ObjectNumber != "" {
		parts = append(parts, in.ObjectNumber)
	}
	if in.Date != "" {
		parts = append(parts, dateSeps.Replace(in.Date))
	}
	if in.DocType != "" {
		parts = append(parts, in.DocType)
	} else {
		parts = append(parts, string(constants.DocTypeUnknown))
	}
	if in.Vendor != "" {
		parts = append(parts, in.Vendor)
	} else {
		parts = append(parts, constants.UnknownVendor)
	}
	if in.Amount != nil {
		parts = append(parts, strings.Replace(in.Amount.StringFixed(2), ".", ",", 1))
	}

	name := strings.Join(parts, "_")
	name = strings.ReplaceAll(name, " ", "_")
	name = reInvalid.ReplaceAllString(name, "_")
	name = reUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
