package search

import (
	"net/url"

	"ndako/services/location"
)

// Recognized query-string keys. Anything else in the URL is ignored.
var filterKeys = []string{
	"commune", "quartier", "district", "ville", "typeOfListing",
	"listingType", "priceMin", "priceMax", "bedroom", "bathroom", "search",
}

// FilterState is the single source of truth for a search/filter intent.
// The five hierarchical fields always form an ancestor-consistent path (or
// a partially-empty prefix of one); every mutation goes through a pure
// reducer so no inconsistent combination is ever observable.
//
// All fields are kept as strings, mirroring the query-string contract;
// numeric interpretation happens at aggregation time.
type FilterState struct {
	Commune       string `json:"commune,omitempty"`
	Quartier      string `json:"quartier,omitempty"`
	District      string `json:"district,omitempty"`
	Ville         string `json:"ville,omitempty"`
	TypeOfListing string `json:"typeOfListing,omitempty"`
	ListingType   string `json:"listingType,omitempty"`
	PriceMin      string `json:"priceMin,omitempty"`
	PriceMax      string `json:"priceMax,omitempty"`
	Bedroom       string `json:"bedroom,omitempty"`
	Bathroom      string `json:"bathroom,omitempty"`
	Search        string `json:"search,omitempty"`

	// Derived from the index after every mutation; not part of the URL.
	AvailableCommunes  []string `json:"availableCommunes,omitempty"`
	AvailableQuartiers []string `json:"availableQuartiers,omitempty"`
}

// NewFilterState returns the empty filter with the default ville selected.
func NewFilterState(idx *location.Index, defaultVille string) FilterState {
	f := FilterState{Ville: defaultVille}
	return f.derive(idx)
}

// InitFromQuery builds a FilterState from URL query parameters. Recognized
// keys set the corresponding field; unrecognized keys are ignored; ville
// falls back to the default when absent. The hierarchy is validated the
// same way SetField validates it, so a hand-edited URL can never produce
// an inconsistent state.
func InitFromQuery(values url.Values, idx *location.Index, defaultVille string) FilterState {
	f := FilterState{
		Commune:       values.Get("commune"),
		Quartier:      values.Get("quartier"),
		District:      values.Get("district"),
		Ville:         values.Get("ville"),
		TypeOfListing: values.Get("typeOfListing"),
		ListingType:   values.Get("listingType"),
		PriceMin:      values.Get("priceMin"),
		PriceMax:      values.Get("priceMax"),
		Bedroom:       values.Get("bedroom"),
		Bathroom:      values.Get("bathroom"),
		Search:        values.Get("search"),
	}
	if f.Ville == "" {
		f.Ville = defaultVille
	}
	return f.normalize(idx)
}

// SetField returns the state with field=value applied and the hierarchy
// kept consistent:
//
//   - district: commune and quartier are cleared unconditionally;
//   - commune: quartier is cleared; a commune not offered under the current
//     district is a caller contract violation and resets to empty;
//   - quartier: validated against the commune's quartiers, invalid is a no-op;
//   - anything else: set directly, no cascading.
//
// Unknown field names leave the state untouched.
func (f FilterState) SetField(field, value string, idx *location.Index) FilterState {
	switch field {
	case "district":
		f.District = value
		f.Commune = ""
		f.Quartier = ""
	case "commune":
		f.Commune = value
		f.Quartier = ""
		if value != "" && !contains(idx.CommunesFor(f.District), value) {
			f.Commune = ""
		}
	case "quartier":
		f.Quartier = value
		if value != "" && !idx.HasQuartier(f.Commune, value) {
			f.Quartier = ""
		}
	case "ville":
		f.Ville = value
	case "typeOfListing":
		f.TypeOfListing = value
	case "listingType":
		f.ListingType = value
	case "priceMin":
		f.PriceMin = value
	case "priceMax":
		f.PriceMax = value
	case "bedroom":
		f.Bedroom = value
	case "bathroom":
		f.Bathroom = value
	case "search":
		f.Search = value
	}
	return f.derive(idx)
}

// Clear resets every field except ville, which reverts to the default.
func (f FilterState) Clear(idx *location.Index, defaultVille string) FilterState {
	return NewFilterState(idx, defaultVille)
}

// ToQuery serializes every non-empty field as a query parameter. Empty
// fields are omitted entirely so a cleared filter disappears from the URL
// rather than appearing as "field=".
func (f FilterState) ToQuery() url.Values {
	values := url.Values{}
	for key, v := range map[string]string{
		"commune":       f.Commune,
		"quartier":      f.Quartier,
		"district":      f.District,
		"ville":         f.Ville,
		"typeOfListing": f.TypeOfListing,
		"listingType":   f.ListingType,
		"priceMin":      f.PriceMin,
		"priceMax":      f.PriceMax,
		"bedroom":       f.Bedroom,
		"bathroom":      f.Bathroom,
		"search":        f.Search,
	} {
		if v != "" {
			values.Set(key, v)
		}
	}
	return values
}

// EncodeQuery is the canonical query string for this state. Search
// responses echo it so the client can replace its URL (no history entry)
// and discard responses belonging to a superseded state.
func (f FilterState) EncodeQuery() string {
	return f.ToQuery().Encode()
}

// normalize enforces the hierarchy invariant on a state assembled from
// arbitrary input, clearing descendants of any invalid selection.
func (f FilterState) normalize(idx *location.Index) FilterState {
	if f.Commune != "" && !contains(idx.CommunesFor(f.District), f.Commune) {
		f.Commune = ""
		f.Quartier = ""
	}
	if f.Quartier != "" && !idx.HasQuartier(f.Commune, f.Quartier) {
		f.Quartier = ""
	}
	return f.derive(idx)
}

// derive recomputes the dependent-dropdown option lists.
func (f FilterState) derive(idx *location.Index) FilterState {
	f.AvailableCommunes = idx.CommunesFor(f.District)
	f.AvailableQuartiers = idx.QuartiersFor(f.Commune)
	return f
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
