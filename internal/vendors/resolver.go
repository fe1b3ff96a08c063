package vendors

import (
	"log/slog"

	"github.com/postbeschriftung/extraction/constants"
	"github.com/postbeschriftung/extraction/internal/entity"
	"github.com/postbeschriftung/extraction/internal/textutil"
)

// Resolver runs the vendor tactic chain over raw document text. Safe for
// concurrent use.
type Resolver struct {
	Logger *slog.Logger
	Cfg    Config
}

func NewResolver(logger *slog.Logger, cfg Config) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Logger: logger, Cfg: cfg.withDefaults()}
}

// Resolve tries the alias map first, then the header scorer. The result is
// always sanitized; when no tactic yields anything the vendor is UNK at the
// floor confidence.
func (r *Resolver) Resolve(text string, aliases map[string]string) Candidate {
	doc := newDocument(text, r.Cfg)

	tactics := []Tactic{
		aliasTactic{aliases: aliases},
		headerScoreTactic{},
	}
	for _, t := range tactics {
		if c := t.TryResolve(doc); c != nil {
			c.Name = Sanitize(c.Name, r.Cfg.MaxNameLen)
			if c.Name == constants.UnknownVendor {
				continue
			}
			r.Logger.Debug("vendors.resolve.hit", "vendor", c.Name, "confidence", c.Confidence)
			return *c
		}
	}
	return Candidate{Name: constants.UnknownVendor, Confidence: ConfUnknown}
}

// ResolveHeader reruns only the header scorer, bypassing the alias map. Used
// as the last-resort re-query after a rejected vendor.
func (r *Resolver) ResolveHeader(text string) Candidate {
	doc := newDocument(text, r.Cfg)
	if c := (headerScoreTactic{}).TryResolve(doc); c != nil {
		c.Name = Sanitize(c.Name, r.Cfg.MaxNameLen)
		if c.Name != constants.UnknownVendor {
			return *c
		}
	}
	return Candidate{Name: constants.UnknownVendor, Confidence: ConfUnknown}
}

// Rejected reports whether a resolved vendor should be treated as wrong:
// either it reads as a receiver role, or it textually matches a contact name
// of the matched building. Prefers an explicit unknown over a
// confident-looking wrong answer.
func (r *Resolver) Rejected(name string, building *entity.BuildingRegistryEntry) bool {
	if name == "" || name == constants.UnknownVendor {
		return false
	}
	if reReceiverRole.MatchString(name) {
		return true
	}
	if building == nil {
		return false
	}
	for _, contact := range []string{building.ManagementContact, building.AccountingContact} {
		if contact == "" {
			continue
		}
		if textutil.Similarity(name, contact) >= r.Cfg.GuardSimilarity {
			return true
		}
	}
	return false
}
