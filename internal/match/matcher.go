// Package match resolves a free-text building candidate against the registry
// of known properties, by alias substring first and fuzzy label similarity
// second.
package match

import (
	"log/slog"
	"strings"

	"github.com/postbeschriftung/extraction/internal/entity"
	"github.com/postbeschriftung/extraction/internal/textutil"
)

// Config holds the acceptance threshold and the substring score floors.
// Empirically tuned (82 for address-aware labels, 90 for the street-only
// variant); override rather than re-derive.
type Config struct {
	// Threshold is the minimum score an entry must reach to be accepted.
	Threshold int
	// StreetFloor is forced when the entry's street alone is a substring of
	// the candidate.
	StreetFloor int
	// PostalCityFloor is forced when both postal code and city are
	// substrings of the candidate.
	PostalCityFloor int
}

const (
	DefaultThreshold       = 82
	StreetOnlyThreshold    = 90
	DefaultStreetFloor     = 92
	DefaultPostalCityFloor = 95
)

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.StreetFloor <= 0 {
		c.StreetFloor = DefaultStreetFloor
	}
	if c.PostalCityFloor <= 0 {
		c.PostalCityFloor = DefaultPostalCityFloor
	}
	return c
}

// Matcher matches candidates against a registry with a linear scan; fine for
// registries in the low thousands, which is the documented ceiling.
type Matcher struct {
	Logger *slog.Logger
	Cfg    Config
}

func NewMatcher(logger *slog.Logger, cfg Config) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{Logger: logger, Cfg: cfg.withDefaults()}
}

// Match returns the accepted registry entry for the candidate, or a rejection
// that still reports the best label and score for diagnostics. An empty
// candidate matches nothing.
func (m *Matcher) Match(candidate string, registry []entity.BuildingRegistryEntry) entity.BuildingMatch {
	candNorm := textutil.Normalize(candidate)
	if candNorm == "" || len(registry) == 0 {
		return entity.BuildingMatch{}
	}

	// alias pass: a verbatim alias inside the candidate is a certain match
	for i := range registry {
		e := &registry[i]
		for _, a := range e.Aliases {
			aNorm := textutil.Normalize(a)
			if aNorm != "" && strings.Contains(candNorm, aNorm) {
				return accepted(e.ObjectNumber, a, 100)
			}
		}
	}

	// fuzzy pass over composed labels
	bestScore := 0
	var bestEntry *entity.BuildingRegistryEntry
	var bestLabel string
	for i := range registry {
		e := &registry[i]
		label := e.Label()
		score := textutil.Similarity(candidate, label)

		if street := textutil.Normalize(e.Street); street != "" && strings.Contains(candNorm, street) {
			score = max(score, m.Cfg.StreetFloor)
		}
		plz := textutil.Normalize(e.PostalCode)
		city := textutil.Normalize(e.City)
		if plz != "" && city != "" &&
			strings.Contains(candNorm, plz) && strings.Contains(candNorm, city) {
			score = max(score, m.Cfg.PostalCityFloor)
		}

		if score > bestScore {
			bestScore = score
			bestEntry = e
			bestLabel = label
		}
	}

	if bestEntry != nil && bestScore >= m.Cfg.Threshold {
		m.Logger.Debug("match.accepted",
			"object_number", bestEntry.ObjectNumber, "score", bestScore)
		return accepted(bestEntry.ObjectNumber, bestLabel, bestScore)
	}

	// rejected: report the attempt anyway
	out := entity.BuildingMatch{Score: &bestScore}
	if bestLabel != "" {
		out.MatchedLabel = &bestLabel
	}
	return out
}

func accepted(objectNumber, label string, score int) entity.BuildingMatch {
	return entity.BuildingMatch{
		ObjectNumber: &objectNumber,
		MatchedLabel: &label,
		Score:        &score,
	}
}
