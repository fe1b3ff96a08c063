package vendors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/postbeschriftung/extraction/constants"
	"github.com/postbeschriftung/extraction/internal/entity"
)

func TestAliasTactic(t *testing.T) {
	r := NewResolver(nil, Config{})

	t.Run("alias key in head wins", func(t *testing.T) {
		text := "Stadtwerke Musterstadt GmbH\nRechnung Nr. 1"
		c := r.Resolve(text, map[string]string{"stadtwerke musterstadt": "Stadtwerke Musterstadt GmbH"})
		assert.Equal(t, "Stadtwerke Musterstadt GmbH", c.Name)
		assert.InDelta(t, ConfAlias, c.Confidence, 1e-9)
	})

	t.Run("short key without context marker is skipped", func(t *testing.T) {
		text := "EWR\nRechnung"
		c := r.Resolve(text, map[string]string{"ewr": "EWR Energie AG"})
		assert.NotEqual(t, "EWR Energie AG", c.Name)
	})

	t.Run("short key with VAT context matches", func(t *testing.T) {
		text := "EWR\nUSt-IdNr. DE123456789\nRechnung"
		c := r.Resolve(text, map[string]string{"ewr": "EWR Energie AG"})
		assert.Equal(t, "EWR Energie AG", c.Name)
		assert.InDelta(t, ConfAlias, c.Confidence, 1e-9)
	})

	t.Run("key outside head window is ignored", func(t *testing.T) {
		lines := make([]string, 0, 40)
		for i := 0; i < 35; i++ {
			lines = append(lines, "Position irgendwas")
		}
		lines = append(lines, "Stadtwerke Musterstadt")
		c := r.Resolve(strings.Join(lines, "\n"), map[string]string{"stadtwerke musterstadt": "Stadtwerke Musterstadt GmbH"})
		assert.NotEqual(t, "Stadtwerke Musterstadt GmbH", c.Name)
	})
}

func TestHeaderScoreTactic(t *testing.T) {
	r := NewResolver(nil, Config{})

	t.Run("table header line never wins", func(t *testing.T) {
		text := "Gesamtpreis Netto MwSt\nMusterBau GmbH\nTelefon: 0221 12345\nRechnung"
		c := r.Resolve(text, nil)
		assert.Equal(t, "MusterBau GmbH", c.Name)
	})

	t.Run("legal form near phone beats plain address line", func(t *testing.T) {
		text := "Hauptstraße 5\nMusterBau GmbH\nTel.: 0221 99887\nwww.musterbau.example\nRechnung 2024"
		c := r.Resolve(text, nil)
		assert.Equal(t, "MusterBau GmbH", c.Name)
		assert.GreaterOrEqual(t, c.Confidence, ConfScoreSolid)
	})

	t.Run("receiver role lines are excluded", func(t *testing.T) {
		text := "Hausverwaltung Meier\nim Auftrag der WEG Sonnenhof\nMusterBau GmbH\nTelefon 0221 5\nRechnung"
		c := r.Resolve(text, nil)
		assert.Equal(t, "MusterBau GmbH", c.Name)
	})

	t.Run("no candidate yields UNK", func(t *testing.T) {
		c := r.Resolve("", nil)
		assert.Equal(t, constants.UnknownVendor, c.Name)
		assert.InDelta(t, ConfUnknown, c.Confidence, 1e-9)
	})
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "cut at street word", in: "MusterBau GmbH Hauptstraße 5", want: "MusterBau GmbH"},
		{name: "cut at postal code", in: "Elektro Schmitz 50667 Köln", want: "Elektro Schmitz"},
		{name: "cut at separator", in: "ACME GmbH | Niederlassung Köln", want: "ACME GmbH"},
		{name: "cut at postfach", in: "ACME GmbH Postfach 1234", want: "ACME GmbH"},
		{name: "trailing punctuation stripped", in: "ACME GmbH ,", want: "ACME GmbH"},
		{name: "empty becomes UNK", in: "  ·  ", want: constants.UnknownVendor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, 0))
		})
	}

	t.Run("caps at max length", func(t *testing.T) {
		long := strings.Repeat("Muster", 30)
		assert.LessOrEqual(t, len([]rune(Sanitize(long, 80))), 80)
	})
}

func TestRejected(t *testing.T) {
	r := NewResolver(nil, Config{})
	building := &entity.BuildingRegistryEntry{
		ObjectNumber:      "100",
		ManagementContact: "Hausverwaltung Lehmann GmbH",
		AccountingContact: "Buchhaltung Krause",
	}

	t.Run("receiver role token rejects", func(t *testing.T) {
		assert.True(t, r.Rejected("WEG Sonnenhof", nil))
		assert.True(t, r.Rejected("Eigentümergemeinschaft Parkstraße", nil))
		assert.True(t, r.Rejected("im Auftrag der Mieter", nil))
	})

	t.Run("match against building contact rejects", func(t *testing.T) {
		assert.True(t, r.Rejected("Hausverwaltung Lehmann GmbH", building))
		assert.True(t, r.Rejected("hausverwaltung lehmann gmbh", building))
	})

	t.Run("ordinary vendor passes", func(t *testing.T) {
		assert.False(t, r.Rejected("MusterBau GmbH", building))
	})

	t.Run("UNK never rejected", func(t *testing.T) {
		assert.False(t, r.Rejected(constants.UnknownVendor, building))
	})
}
