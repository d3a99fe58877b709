// Package location derives the known location values and their
// hierarchical relationships from the listing collection.
package location

import (
	"sort"

	"ndako/models"
)

// Index holds the deduplicated location values and the district→commune
// and commune→quartier relationships actually observed in the data. It is
// rebuilt from scratch whenever the listing collection is refreshed.
type Index struct {
	Villes    []string `json:"villes"`
	Districts []string `json:"districts"`
	Communes  []string `json:"communes"`
	Quartiers []string `json:"quartiers"`

	DistrictToCommunes map[string][]string `json:"districtToCommunes"`
	CommuneToQuartiers map[string][]string `json:"communeToQuartiers"`
}

// Build scans the listings once and records every location value and every
// (district, commune) and (commune, quartier) pair observed. Entries with
// missing fields are skipped field-by-field; nothing fails the pass.
// Value slices are sorted so the dropdowns are stable across rebuilds.
func Build(listings []models.Listing, defaultVille string) *Index {
	villes := map[string]bool{}
	districts := map[string]bool{}
	communes := map[string]bool{}
	quartiers := map[string]bool{}
	districtToCommunes := map[string]map[string]bool{}
	communeToQuartiers := map[string]map[string]bool{}

	if defaultVille != "" {
		villes[defaultVille] = true
	}

	for i := range listings {
		loc := listings[i].Location
		ville := loc.Ville
		if ville == "" {
			ville = defaultVille
		}
		if ville != "" {
			villes[ville] = true
		}
		if loc.District != "" {
			districts[loc.District] = true
		}
		if loc.Commune != "" {
			communes[loc.Commune] = true
		}
		if loc.Quartier != "" {
			quartiers[loc.Quartier] = true
		}

		if loc.District != "" && loc.Commune != "" {
			if districtToCommunes[loc.District] == nil {
				districtToCommunes[loc.District] = map[string]bool{}
			}
			districtToCommunes[loc.District][loc.Commune] = true
		}
		if loc.Commune != "" && loc.Quartier != "" {
			if communeToQuartiers[loc.Commune] == nil {
				communeToQuartiers[loc.Commune] = map[string]bool{}
			}
			communeToQuartiers[loc.Commune][loc.Quartier] = true
		}
	}

	idx := &Index{
		Villes:             sortedKeys(villes),
		Districts:          sortedKeys(districts),
		Communes:           sortedKeys(communes),
		Quartiers:          sortedKeys(quartiers),
		DistrictToCommunes: make(map[string][]string, len(districtToCommunes)),
		CommuneToQuartiers: make(map[string][]string, len(communeToQuartiers)),
	}
	for district, set := range districtToCommunes {
		idx.DistrictToCommunes[district] = sortedKeys(set)
	}
	for commune, set := range communeToQuartiers {
		idx.CommuneToQuartiers[commune] = sortedKeys(set)
	}
	return idx
}

// CommunesFor returns the communes observed under the district, or every
// known commune when district is empty.
func (idx *Index) CommunesFor(district string) []string {
	if district == "" {
		return idx.Communes
	}
	return idx.DistrictToCommunes[district]
}

// QuartiersFor returns the quartiers observed under the commune. An empty
// commune yields no quartiers: the dropdown stays empty until one is picked.
func (idx *Index) QuartiersFor(commune string) []string {
	if commune == "" {
		return nil
	}
	return idx.CommuneToQuartiers[commune]
}

// HasCommune reports whether the commune was observed under the district.
func (idx *Index) HasCommune(district, commune string) bool {
	return contains(idx.DistrictToCommunes[district], commune)
}

// HasQuartier reports whether the quartier was observed under the commune.
func (idx *Index) HasQuartier(commune, quartier string) bool {
	return contains(idx.CommuneToQuartiers[commune], quartier)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
