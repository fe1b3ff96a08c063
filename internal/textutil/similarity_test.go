package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "classic kitten/sitting", a: "kitten", b: "sitting", want: 3},
		{name: "equal strings", a: "rechnung", b: "rechnung", want: 0},
		{name: "empty left", a: "", b: "abc", want: 3},
		{name: "empty right", a: "abc", b: "", want: 3},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "single substitution", a: "haus", b: "maus", want: 1},
		{name: "umlauts count as one rune", a: "straße", b: "strasse", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	t.Run("identity is 100", func(t *testing.T) {
		for _, s := range []string{"x", "MusterBau GmbH", "Hauptstraße 12, 50667 Köln"} {
			assert.Equal(t, 100, Similarity(s, s), s)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a, b := "Musterbau GmbH & Co. KG", "MusterBau GmbH"
		assert.Equal(t, Similarity(a, b), Similarity(b, a))
	})

	t.Run("both empty is 0", func(t *testing.T) {
		assert.Equal(t, 0, Similarity("", ""))
		// punctuation-only inputs normalize to empty as well
		assert.Equal(t, 0, Similarity("!!", "??"))
	})

	t.Run("normalization folds case and sharp s", func(t *testing.T) {
		assert.Equal(t, 100, Similarity("Hauptstraße", "hauptstrasse"))
	})

	t.Run("unrelated strings score low", func(t *testing.T) {
		assert.Less(t, Similarity("Elektro Schmitz GmbH", "Gartenweg 5 Hamburg"), 50)
	})
}
