package entity

import "strings"

// BuildingRegistryEntry is one known property in the building registry.
// ObjectNumber is the unique key; Aliases are literal strings known to refer
// to this entry.
type BuildingRegistryEntry struct {
	ObjectNumber      string   `json:"object_number"`
	BuildingName      string   `json:"building_name"`
	Street            string   `json:"street"`
	PostalCode        string   `json:"postal_code"`
	City              string   `json:"city"`
	Aliases           []string `json:"aliases,omitempty"`
	ManagementContact string   `json:"management_contact,omitempty"`
	AccountingContact string   `json:"accounting_contact,omitempty"`
}

// Label composes the address-aware label used for fuzzy matching.
func (e BuildingRegistryEntry) Label() string {
	parts := []string{e.BuildingName, e.Street, e.PostalCode, e.City}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
