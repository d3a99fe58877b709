package search

import (
	"fmt"
	"strings"

	"ndako/models"
)

// Marker is a map pin for a listing that has coordinates.
type Marker struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Summary   Summary `json:"summary"`
}

// Summary is the marker popup content.
type Summary struct {
	TypeOfListing string `json:"typeOfListing"`
	Price         string `json:"price"`
	Bedroom       int    `json:"bedroom"`
	Bathroom      int    `json:"bathroom"`
	Image         string `json:"image,omitempty"`
}

// Card is the grid/list cell for a listing, with or without coordinates.
type Card struct {
	ID            string `json:"id"`
	Title         string `json:"title,omitempty"`
	LocationLine  string `json:"locationLine"`
	TypeOfListing string `json:"typeOfListing"`
	ListingType   string `json:"listingType"`
	Price         string `json:"price"`
	Bedroom       int    `json:"bedroom"`
	Bathroom      int    `json:"bathroom"`
	Image         string `json:"image,omitempty"`
}

// ToMarkers maps listings to map pins, dropping any listing without
// coordinates. Such listings still appear in the card list.
func ToMarkers(listings []models.Listing) []Marker {
	markers := make([]Marker, 0, len(listings))
	for i := range listings {
		l := &listings[i]
		if !l.HasCoordinates() {
			continue
		}
		markers = append(markers, Marker{
			ID:        l.ID,
			Latitude:  l.Coordinates.Latitude,
			Longitude: l.Coordinates.Longitude,
			Summary: Summary{
				TypeOfListing: string(l.TypeOfListing),
				Price:         PriceLabel(l),
				Bedroom:       l.Details.Bedroom,
				Bathroom:      l.Details.Bathroom,
				Image:         l.CoverImage(),
			},
		})
	}
	return markers
}

// ToCards maps listings to grid cells.
func ToCards(listings []models.Listing) []Card {
	cards := make([]Card, 0, len(listings))
	for i := range listings {
		l := &listings[i]
		cards = append(cards, Card{
			ID:            l.ID,
			Title:         l.Title,
			LocationLine:  locationLine(l),
			TypeOfListing: string(l.TypeOfListing),
			ListingType:   string(l.ListingType),
			Price:         PriceLabel(l),
			Bedroom:       l.Details.Bedroom,
			Bathroom:      l.Details.Bathroom,
			Image:         l.CoverImage(),
		})
	}
	return cards
}

// PriceLabel formats the active price by listing type:
// rent "$X/mo", sale "$X", daily "$X/day". Unknown types yield "".
func PriceLabel(l *models.Listing) string {
	switch l.ListingType {
	case models.ListingRent:
		return fmt.Sprintf("$%s/mo", formatAmount(l.ActivePrice()))
	case models.ListingSale:
		return fmt.Sprintf("$%s", formatAmount(l.ActivePrice()))
	case models.ListingDaily:
		return fmt.Sprintf("$%s/day", formatAmount(l.ActivePrice()))
	default:
		return ""
	}
}

// Paginate returns the pageIndex-th window of pageSize listings. An
// out-of-range pageIndex yields an empty window, never an error.
func Paginate(listings []models.Listing, pageSize, pageIndex int) []models.Listing {
	if pageSize <= 0 || pageIndex < 0 {
		return nil
	}
	start := pageIndex * pageSize
	if start >= len(listings) {
		return nil
	}
	end := start + pageSize
	if end > len(listings) {
		end = len(listings)
	}
	return listings[start:end]
}

func locationLine(l *models.Listing) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Location.Quartier, l.Location.Commune, l.Location.Ville} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// formatAmount renders a price without a trailing ".00" for whole amounts.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
