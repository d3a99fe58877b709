package search

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"ndako/models"
)

// Sort orders accepted by Search.
const (
	SortDefault   = "default"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortBedrooms  = "bedrooms"
	SortNewest    = "newest"
)

// Search retains the listings matching every non-empty filter field,
// applies the requested sort and returns a new slice; the input is never
// mutated. Unpublished listings never match.
func Search(listings []models.Listing, filters FilterState, sortBy string) []models.Listing {
	var out []models.Listing
	for i := range listings {
		if matches(&listings[i], filters) {
			out = append(out, listings[i])
		}
	}
	return sortListings(out, sortBy)
}

func matches(l *models.Listing, f FilterState) bool {
	if !l.IsPublished {
		return false
	}

	// Listings reach the aggregator with ville already normalized to the
	// default city when absent (see Service.loadListings).
	if !fieldEquals(f.Ville, l.Location.Ville) ||
		!fieldEquals(f.District, l.Location.District) ||
		!fieldEquals(f.Commune, l.Location.Commune) ||
		!fieldEquals(f.Quartier, l.Location.Quartier) {
		return false
	}
	if f.TypeOfListing != "" && !strings.EqualFold(f.TypeOfListing, string(l.TypeOfListing)) {
		return false
	}
	if f.ListingType != "" && !strings.EqualFold(f.ListingType, string(l.ListingType)) {
		return false
	}

	price := l.ActivePrice()
	if min, ok := parsePrice(f.PriceMin); ok && price < min {
		return false
	}
	if max, ok := parsePrice(f.PriceMax); ok && price > max {
		return false
	}

	if !countMatches(f.Bedroom, l.Details.Bedroom) ||
		!countMatches(f.Bathroom, l.Details.Bathroom) {
		return false
	}

	if f.Search != "" {
		haystack := strings.ToLower(strings.Join([]string{
			l.Location.Address,
			l.Location.Quartier,
			l.Location.Commune,
			l.Location.District,
			l.Location.Ville,
		}, " "))
		if !strings.Contains(haystack, strings.ToLower(f.Search)) {
			return false
		}
	}
	return true
}

// fieldEquals treats an empty filter value as "any".
func fieldEquals(filter, value string) bool {
	return filter == "" || strings.EqualFold(filter, value)
}

// parsePrice returns the numeric bound, or ok=false for empty or
// unparsable values (which are treated as no bound).
func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// countMatches compares a room-count filter such as "3" or "5+" against the
// listing's count. A trailing "+" means at-least; empty means any.
func countMatches(filter string, count int) bool {
	if filter == "" {
		return true
	}
	if atLeast, found := strings.CutSuffix(filter, "+"); found {
		n, err := strconv.Atoi(atLeast)
		if err != nil {
			return true
		}
		return count >= n
	}
	n, err := strconv.Atoi(filter)
	if err != nil {
		return true
	}
	return count == n
}

func sortListings(listings []models.Listing, sortBy string) []models.Listing {
	switch sortBy {
	case SortPriceLow:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].ActivePrice() < listings[j].ActivePrice()
		})
	case SortPriceHigh:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].ActivePrice() > listings[j].ActivePrice()
		})
	case SortBedrooms:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Details.Bedroom > listings[j].Details.Bedroom
		})
	case SortNewest:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		})
	default:
		// Input order.
	}
	return listings
}

// SampleRandom returns n listings drawn uniformly without replacement, or
// every listing when the collection is smaller. Uses a Fisher-Yates
// partial shuffle over a copy; a comparator with a random key would not be
// uniformly distributed.
func SampleRandom(listings []models.Listing, n int) []models.Listing {
	if n <= 0 {
		return nil
	}
	pool := make([]models.Listing, len(listings))
	copy(pool, listings)
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + rand.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
