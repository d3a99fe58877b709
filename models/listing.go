package models

import "time"

// ListingType distinguishes how a property is offered.
type ListingType string

const (
	ListingRent  ListingType = "rent"
	ListingSale  ListingType = "sale"
	ListingDaily ListingType = "daily"
)

// PropertyType is the kind of property being listed.
type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyCondo     PropertyType = "condo"
	PropertyOffice    PropertyType = "office"
	PropertyLand      PropertyType = "land"
)

// Location places a listing in the ville > district > commune > quartier hierarchy.
type Location struct {
	Address  string `bson:"address,omitempty" json:"address,omitempty"`
	Quartier string `bson:"quartier,omitempty" json:"quartier,omitempty"`
	Commune  string `bson:"commune,omitempty" json:"commune,omitempty"`
	District string `bson:"district,omitempty" json:"district,omitempty"`
	Ville    string `bson:"ville,omitempty" json:"ville,omitempty"`
}

// Details carries the room counts. Absent values are zero.
type Details struct {
	Floor      int `bson:"floor" json:"floor"`
	Bedroom    int `bson:"bedroom" json:"bedroom"`
	Bathroom   int `bson:"bathroom" json:"bathroom"`
	Kitchen    int `bson:"kitchen" json:"kitchen"`
	DiningRoom int `bson:"diningRoom" json:"diningRoom"`
}

// Coordinates is an optional map position. A listing without coordinates
// cannot be placed on the map but still appears in the card list.
type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Listing is a property advertisement. Exactly one of the three price
// fields is set, matching ListingType.
type Listing struct {
	ID            string       `bson:"id" json:"id"`
	Title         string       `bson:"title,omitempty" json:"title,omitempty"`
	Description   string       `bson:"description,omitempty" json:"description,omitempty"`
	TypeOfListing PropertyType `bson:"typeOfListing" json:"typeOfListing"`
	ListingType   ListingType  `bson:"listingType" json:"listingType"`
	PriceMonthly  *float64     `bson:"priceMonthly,omitempty" json:"priceMonthly,omitempty"`
	PriceSale     *float64     `bson:"priceSale,omitempty" json:"priceSale,omitempty"`
	PriceDaily    *float64     `bson:"priceDaily,omitempty" json:"priceDaily,omitempty"`
	Location      Location     `bson:"location" json:"location"`
	Details       Details      `bson:"details" json:"details"`
	Images        []string     `bson:"images,omitempty" json:"images,omitempty"`
	Coordinates   *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	// GeoApprox marks coordinates derived from a district centroid rather
	// than the geocoder; such listings are queued for background re-geocoding.
	GeoApprox   bool      `bson:"geoApprox,omitempty" json:"-"`
	IsPublished bool      `bson:"isPublished" json:"isPublished"`
	CreatedBy   string    `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ActivePrice returns the price field selected by the listing's own type.
func (l *Listing) ActivePrice() float64 {
	switch l.ListingType {
	case ListingRent:
		if l.PriceMonthly != nil {
			return *l.PriceMonthly
		}
	case ListingSale:
		if l.PriceSale != nil {
			return *l.PriceSale
		}
	case ListingDaily:
		if l.PriceDaily != nil {
			return *l.PriceDaily
		}
	}
	return 0
}

// CoverImage returns the primary image, or "" when the listing has none.
func (l *Listing) CoverImage() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

// HasCoordinates reports whether the listing can be placed on the map.
func (l *Listing) HasCoordinates() bool {
	return l.Coordinates != nil
}
