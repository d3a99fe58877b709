package listingRepo

import (
	"context"
	"time"

	"ndako/models"
)

// ListingRepository abstracts listing persistence.
type ListingRepository interface {
	GetByID(id string) (*models.Listing, error)
	GetPublished() ([]models.Listing, error)
	GetByOwner(ownerID string) ([]models.Listing, error)
	GetWithoutCoordinates(limit int) ([]models.Listing, error)
	Create(listing *models.Listing) error
	Update(listing *models.Listing) error
	SetPublished(id string, published bool) error
	SetCoordinates(id string, coords models.Coordinates, approx bool) error
	Delete(id string) error
}

func newContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
