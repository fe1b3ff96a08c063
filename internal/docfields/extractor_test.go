package docfields

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postbeschriftung/extraction/constants"
)

func TestDocType(t *testing.T) {
	e := NewExtractor(Config{})

	tests := []struct {
		name     string
		text     string
		wantType constants.DocType
		wantConf float64
	}{
		{name: "invoice keyword", text: "Rechnung Nr. 2024-117", wantType: constants.DocTypeInvoice, wantConf: 0.90},
		{name: "offer keyword", text: "Hiermit erhalten Sie unser Angebot", wantType: constants.DocTypeOffer, wantConf: 0.85},
		{name: "delivery note keyword", text: "LIEFERSCHEIN 4711", wantType: constants.DocTypeDeliveryNote, wantConf: 0.85},
		{name: "invoice beats offer when both present", text: "Angebot war gestern, heute Rechnung", wantType: constants.DocTypeInvoice, wantConf: 0.90},
		{name: "no keyword", text: "Wartungsprotokoll Heizung", wantType: constants.DocTypeUnknown, wantConf: 0.30},
		{name: "keyword only as part of a word", text: "Rechnungsprüfung läuft", wantType: constants.DocTypeUnknown, wantConf: 0.30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := e.Extract(tt.text)
			assert.Equal(t, tt.wantType, f.DocType)
			assert.InDelta(t, tt.wantConf, f.DocTypeConfidence, 1e-9)
		})
	}
}

func TestExtractAmount(t *testing.T) {
	e := NewExtractor(Config{})

	t.Run("trigger hit with unique value", func(t *testing.T) {
		f := e.Extract("Gesamtbetrag: 1.234,56 €")
		require.NotNil(t, f.Amount)
		assert.True(t, f.Amount.Equal(decimal.RequireFromString("1234.56")), f.Amount.String())
		assert.InDelta(t, ConfAmountTriggered, f.AmountConfidence, 1e-9)
	})

	t.Run("conflicting trigger hits take the last, lower confidence", func(t *testing.T) {
		f := e.Extract("Summe netto 100,00\nGesamtbetrag 119,00 EUR")
		require.NotNil(t, f.Amount)
		assert.True(t, f.Amount.Equal(decimal.RequireFromString("119.00")))
		assert.InDelta(t, ConfAmountAmbiguous, f.AmountConfidence, 1e-9)
	})

	t.Run("no trigger falls back to unique maximum", func(t *testing.T) {
		f := e.Extract("Posten A 12,00 EUR\nPosten B 7,50 EUR")
		require.NotNil(t, f.Amount)
		assert.True(t, f.Amount.Equal(decimal.RequireFromString("12.00")))
		assert.InDelta(t, ConfAmountMaxUnique, f.AmountConfidence, 1e-9)
	})

	t.Run("repeated maximum drops confidence", func(t *testing.T) {
		f := e.Extract("12,00 irgendwo und nochmal 12,00 sowie 3,10")
		require.NotNil(t, f.Amount)
		assert.True(t, f.Amount.Equal(decimal.RequireFromString("12.00")))
		assert.InDelta(t, ConfAmountMaxShared, f.AmountConfidence, 1e-9)
	})

	t.Run("nothing parses", func(t *testing.T) {
		f := e.Extract("kein Betrag weit und breit")
		assert.Nil(t, f.Amount)
		assert.InDelta(t, ConfAmountNone, f.AmountConfidence, 1e-9)
	})

	t.Run("trigger with whitespace variants", func(t *testing.T) {
		f := e.Extract("Zu  zahlen: 99,99 EUR")
		require.NotNil(t, f.Amount)
		assert.True(t, f.Amount.Equal(decimal.RequireFromString("99.99")))
		assert.InDelta(t, ConfAmountTriggered, f.AmountConfidence, 1e-9)
	})
}

func TestParseGermanAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"12,00 EUR", "12.00"},
		{"€ 7,10", "7.10"},
		{"199,50", "199.50"},
	}
	for _, tt := range tests {
		got := ParseGermanAmount(tt.in)
		require.NotNil(t, got, tt.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s -> %s", tt.in, got)
	}
	assert.Nil(t, ParseGermanAmount(""))
	assert.Nil(t, ParseGermanAmount("abc"))
}

func TestExtractDate(t *testing.T) {
	e := NewExtractor(Config{})

	t.Run("german format converts to ISO", func(t *testing.T) {
		f := e.Extract("Rechnungsdatum 05.03.2024")
		assert.Equal(t, "2024-03-05", f.Date)
		assert.InDelta(t, ConfDate, f.DateConfidence, 1e-9)
	})

	t.Run("iso literal passes through", func(t *testing.T) {
		f := e.Extract("Datum: 2024-03-05")
		assert.Equal(t, "2024-03-05", f.Date)
		assert.InDelta(t, ConfDate, f.DateConfidence, 1e-9)
	})

	t.Run("german beats iso", func(t *testing.T) {
		f := e.Extract("2023-01-01 sowie 05.03.2024")
		assert.Equal(t, "2024-03-05", f.Date)
	})

	t.Run("no date", func(t *testing.T) {
		f := e.Extract("gar kein Datum")
		assert.Empty(t, f.Date)
		assert.InDelta(t, ConfDateNone, f.DateConfidence, 1e-9)
	})
}

func TestExtractBuildingCandidate(t *testing.T) {
	e := NewExtractor(Config{})

	t.Run("trigger line joins following lines", func(t *testing.T) {
		f := e.Extract("Rechnung\nObjekt: Wohnanlage Sonnenhof\nHauptstraße 12\n50667 Köln\nPos 1 Wartung")
		assert.Equal(t, "Objekt: Wohnanlage Sonnenhof Hauptstraße 12 50667 Köln", f.BuildingCandidate)
		assert.InDelta(t, ConfBuildingTrigger, f.BuildingConfidence, 1e-9)
	})

	t.Run("street fallback with postal city on next line", func(t *testing.T) {
		f := e.Extract("Irgendwas\nGartenallee 3\n22301 Hamburg\nweiter im Text")
		assert.Contains(t, f.BuildingCandidate, "Gartenallee 3")
		assert.Contains(t, f.BuildingCandidate, "22301 Hamburg")
		assert.InDelta(t, ConfBuildingStreet, f.BuildingConfidence, 1e-9)
	})

	t.Run("no candidate", func(t *testing.T) {
		f := e.Extract("nur Zahlen 1 2 3\nund Worte")
		assert.Empty(t, f.BuildingCandidate)
		assert.InDelta(t, ConfBuildingNone, f.BuildingConfidence, 1e-9)
	})

	t.Run("candidate block is capped", func(t *testing.T) {
		long := "Objekt:"
		for i := 0; i < 50; i++ {
			long += " Wohnanlage am Stadtpark Abschnitt"
		}
		f := e.Extract(long)
		assert.LessOrEqual(t, len(f.BuildingCandidate), DefaultCandidateMaxLen)
	})
}
