package filename

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amt(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want string
	}{
		{
			name: "all fields present",
			in: Input{
				ObjectNumber: "100",
				Date:         "2024-03-05",
				DocType:      "Rechnung",
				Vendor:       "ACME GmbH",
				Amount:       amt("199.5"),
			},
			want: "100_20240305_Rechnung_ACME_GmbH_199,50.pdf",
		},
		{
			name: "missing object and date",
			in:   Input{DocType: "Angebot", Vendor: "MusterBau GmbH"},
			want: "Angebot_MusterBau_GmbH.pdf",
		},
		{
			name: "defaults when everything is unknown",
			in:   Input{},
			want: "Dokument_UNK.pdf",
		},
		{
			name: "invalid characters become underscores and collapse",
			in:   Input{DocType: "Rechnung", Vendor: "Müller & Söhne (Köln)"},
			want: "Rechnung_Müller_Söhne_Köln.pdf",
		},
		{
			name: "umlauts and sharp s survive",
			in:   Input{DocType: "Rechnung", Vendor: "Straßenbau Süd"},
			want: "Rechnung_Straßenbau_Süd.pdf",
		},
		{
			name: "thousands amounts keep german decimal comma",
			in:   Input{DocType: "Rechnung", Vendor: "ACME", Amount: amt("1234.56")},
			want: "Rechnung_ACME_1234,56.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.in))
		})
	}
}

func TestBuildPDFSuffix(t *testing.T) {
	got := Build(Input{DocType: "Rechnung", Vendor: "Scan.PDF"})
	// suffix check is case-insensitive; no double extension
	assert.Equal(t, "Rechnung_Scan.PDF", got)
}
