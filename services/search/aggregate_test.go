package search

import (
	"testing"
	"time"

	"ndako/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceOf(v float64) *float64 {
	return &v
}

func rentListing(id, commune string, monthly float64, bedrooms int) models.Listing {
	return models.Listing{
		ID:            id,
		TypeOfListing: models.PropertyApartment,
		ListingType:   models.ListingRent,
		PriceMonthly:  priceOf(monthly),
		Location: models.Location{
			District: "Funa",
			Commune:  commune,
			Ville:    testVille,
		},
		Details:     models.Details{Bedroom: bedrooms, Bathroom: 1},
		IsPublished: true,
	}
}

func saleListing(id string, price float64) models.Listing {
	return models.Listing{
		ID:            id,
		TypeOfListing: models.PropertyHouse,
		ListingType:   models.ListingSale,
		PriceSale:     priceOf(price),
		Location:      models.Location{Commune: "Lemba", Ville: testVille},
		IsPublished:   true,
	}
}

func TestSearchFiltersByListingTypeAndPriceMax(t *testing.T) {
	listings := []models.Listing{
		rentListing("r1", "Gombe", 400, 2),
		rentListing("r2", "Gombe", 800, 3),
		saleListing("s1", 90000),
	}
	daily := rentListing("d1", "Gombe", 0, 1)
	daily.ListingType = models.ListingDaily
	daily.PriceMonthly = nil
	daily.PriceDaily = priceOf(30)
	listings = append(listings, daily)

	f := FilterState{Ville: testVille, ListingType: "rent", PriceMax: "500"}
	got := Search(listings, f, SortDefault)

	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

func TestSearchNeverReturnsUnpublished(t *testing.T) {
	hidden := rentListing("r1", "Gombe", 400, 2)
	hidden.IsPublished = false

	got := Search([]models.Listing{hidden}, FilterState{Ville: testVille}, SortDefault)
	assert.Empty(t, got)
}

func TestSearchLocationFieldsAreAndCombined(t *testing.T) {
	listings := []models.Listing{
		rentListing("r1", "Gombe", 400, 2),
		rentListing("r2", "Ngaliema", 450, 2),
	}

	f := FilterState{Ville: testVille, District: "Funa", Commune: "Ngaliema"}
	got := Search(listings, f, SortDefault)

	require.Len(t, got, 1)
	assert.Equal(t, "r2", got[0].ID)
}

func TestSearchEmptyFieldMatchesAnything(t *testing.T) {
	listings := []models.Listing{
		rentListing("r1", "Gombe", 400, 2),
		saleListing("s1", 90000),
	}

	got := Search(listings, FilterState{Ville: testVille}, SortDefault)
	assert.Len(t, got, 2)
}

func TestSearchRoomCountAtLeastSemantics(t *testing.T) {
	listings := []models.Listing{
		rentListing("r1", "Gombe", 400, 2),
		rentListing("r2", "Gombe", 600, 4),
		rentListing("r3", "Gombe", 900, 6),
	}

	got := Search(listings, FilterState{Ville: testVille, Bedroom: "4+"}, SortDefault)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID)
	assert.Equal(t, "r3", got[1].ID)

	exact := Search(listings, FilterState{Ville: testVille, Bedroom: "4"}, SortDefault)
	require.Len(t, exact, 1)
	assert.Equal(t, "r2", exact[0].ID)
}

func TestSearchFreeTextMatchesLocationFields(t *testing.T) {
	l := rentListing("r1", "Gombe", 400, 2)
	l.Location.Address = "12 Avenue de la Justice"
	listings := []models.Listing{l, rentListing("r2", "Ngaliema", 450, 2)}

	got := Search(listings, FilterState{Ville: testVille, Search: "justice"}, SortDefault)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)

	byCommune := Search(listings, FilterState{Ville: testVille, Search: "ngaliema"}, SortDefault)
	require.Len(t, byCommune, 1)
	assert.Equal(t, "r2", byCommune[0].ID)
}

func TestSearchSortOrders(t *testing.T) {
	now := time.Now()
	a := rentListing("a", "Gombe", 700, 1)
	a.CreatedAt = now.Add(-2 * time.Hour)
	b := rentListing("b", "Gombe", 300, 3)
	b.CreatedAt = now.Add(-1 * time.Hour)
	c := rentListing("c", "Gombe", 500, 2)
	c.CreatedAt = now
	listings := []models.Listing{a, b, c}

	ids := func(got []models.Listing) []string {
		out := make([]string, len(got))
		for i := range got {
			out[i] = got[i].ID
		}
		return out
	}

	assert.Equal(t, []string{"b", "c", "a"}, ids(Search(listings, FilterState{Ville: testVille}, SortPriceLow)))
	assert.Equal(t, []string{"a", "c", "b"}, ids(Search(listings, FilterState{Ville: testVille}, SortPriceHigh)))
	assert.Equal(t, []string{"b", "c", "a"}, ids(Search(listings, FilterState{Ville: testVille}, SortBedrooms)))
	assert.Equal(t, []string{"c", "b", "a"}, ids(Search(listings, FilterState{Ville: testVille}, SortNewest)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Search(listings, FilterState{Ville: testVille}, SortDefault)))
}

func TestSearchDoesNotMutateInput(t *testing.T) {
	listings := []models.Listing{
		rentListing("a", "Gombe", 700, 1),
		rentListing("b", "Gombe", 300, 3),
	}

	_ = Search(listings, FilterState{Ville: testVille}, SortPriceLow)

	assert.Equal(t, "a", listings[0].ID)
	assert.Equal(t, "b", listings[1].ID)
}

func TestSampleRandomReturnsDistinctListings(t *testing.T) {
	listings := make([]models.Listing, 10)
	for i := range listings {
		listings[i] = rentListing(string(rune('a'+i)), "Gombe", 400, 2)
	}

	got := SampleRandom(listings, 4)
	require.Len(t, got, 4)

	seen := map[string]bool{}
	for _, l := range got {
		assert.False(t, seen[l.ID], "listing %s sampled twice", l.ID)
		seen[l.ID] = true
	}
}

func TestSampleRandomSmallerPoolReturnsAll(t *testing.T) {
	listings := []models.Listing{
		rentListing("a", "Gombe", 400, 2),
		rentListing("b", "Gombe", 500, 2),
	}

	got := SampleRandom(listings, 6)
	assert.Len(t, got, 2)

	assert.Nil(t, SampleRandom(listings, 0))
	assert.Empty(t, SampleRandom(nil, 4))
}
