package models

import (
	"fmt"
	"strings"
)

// FieldError describes a single invalid form field. It is surfaced inline
// next to the field and blocks submission.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates every invalid field of a submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks the listing invariants before it is persisted.
// Exactly one price field must be set and it must match ListingType.
func (l *Listing) Validate() error {
	var errs ValidationErrors

	switch l.TypeOfListing {
	case PropertyApartment, PropertyHouse, PropertyCondo, PropertyOffice, PropertyLand:
	default:
		errs = append(errs, FieldError{"typeOfListing", "unknown property type"})
	}

	priceCount := 0
	if l.PriceMonthly != nil {
		priceCount++
	}
	if l.PriceSale != nil {
		priceCount++
	}
	if l.PriceDaily != nil {
		priceCount++
	}

	switch l.ListingType {
	case ListingRent:
		if l.PriceMonthly == nil {
			errs = append(errs, FieldError{"priceMonthly", "required for rent listings"})
		}
	case ListingSale:
		if l.PriceSale == nil {
			errs = append(errs, FieldError{"priceSale", "required for sale listings"})
		}
	case ListingDaily:
		if l.PriceDaily == nil {
			errs = append(errs, FieldError{"priceDaily", "required for daily listings"})
		}
	default:
		errs = append(errs, FieldError{"listingType", "must be rent, sale or daily"})
	}
	if priceCount > 1 {
		errs = append(errs, FieldError{"price", "only the price matching listingType may be set"})
	}
	if p := l.ActivePrice(); priceCount == 1 && p <= 0 {
		errs = append(errs, FieldError{"price", "must be positive"})
	}

	for _, d := range []struct {
		name  string
		value int
	}{
		{"floor", l.Details.Floor},
		{"bedroom", l.Details.Bedroom},
		{"bathroom", l.Details.Bathroom},
		{"kitchen", l.Details.Kitchen},
		{"diningRoom", l.Details.DiningRoom},
	} {
		if d.value < 0 {
			errs = append(errs, FieldError{d.name, "must not be negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
