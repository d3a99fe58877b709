package listing

import "errors"

var (
	// ErrNotFound is returned when the listing does not exist.
	ErrNotFound = errors.New("listing not found")
	// ErrNotOwner is returned when a caller tries to modify a listing
	// created by someone else.
	ErrNotOwner = errors.New("only the owner may modify this listing")
)
