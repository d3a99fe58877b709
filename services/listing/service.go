// Package listing implements the lister-facing CRUD operations: create,
// edit, publish/unpublish and delete, with ownership enforcement.
package listing

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	listingRepo "ndako/database/repository/listing"
	"ndako/models"
	"ndako/services/geocode"
	"ndako/services/storage"
	"ndako/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GeocodeQueue schedules background re-geocoding for listings saved with
// fallback coordinates.
type GeocodeQueue interface {
	EnqueueGeocodeBackfill(listingID string) error
}

// Invalidator drops derived search state after a write.
type Invalidator interface {
	Invalidate()
}

// Service owns the listing write path.
type Service struct {
	Repo     listingRepo.ListingRepository
	Storage  storage.StorageService
	Geocoder geocode.Geocoder
	Queue    GeocodeQueue
	Search   Invalidator
}

// GetByID fetches a single listing. The caller decides whether an
// unpublished listing may be shown (owner dashboard vs public view).
func (s *Service) GetByID(id string) (*models.Listing, error) {
	l, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, listingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// GetByOwner returns every listing of the user, published or not.
func (s *Service) GetByOwner(ownerID string) ([]models.Listing, error) {
	return s.Repo.GetByOwner(ownerID)
}

// Create validates, geocodes and persists a new listing. Images are
// uploaded first so a failed upload never leaves a half-written listing.
func (s *Service) Create(ctx context.Context, ownerID string, l *models.Listing, images []*multipart.FileHeader) (*models.Listing, error) {
	logger := utils.GetLogger()

	l.ID = uuid.NewString()
	l.CreatedBy = ownerID
	l.IsPublished = true
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	if err := l.Validate(); err != nil {
		return nil, err
	}

	urls, err := s.uploadImages(ctx, l.ID, images)
	if err != nil {
		return nil, err
	}
	l.Images = append(l.Images, urls...)

	s.resolveCoordinates(ctx, l)

	if err := s.Repo.Create(l); err != nil {
		return nil, fmt.Errorf("failed to persist listing: %w", err)
	}
	if l.GeoApprox && s.Queue != nil {
		if err := s.Queue.EnqueueGeocodeBackfill(l.ID); err != nil {
			logger.Warn("failed to queue geocode backfill", zap.String("listingID", l.ID), zap.Error(err))
		}
	}
	s.invalidate()
	logger.Info("Listing created", zap.String("listingID", l.ID), zap.String("owner", ownerID))
	return l, nil
}

// Update applies the changes to an existing listing owned by the caller.
// New images are appended after the existing ones; the address is
// re-geocoded when it changed.
func (s *Service) Update(ctx context.Context, ownerID string, updated *models.Listing, images []*multipart.FileHeader) (*models.Listing, error) {
	current, err := s.mustOwn(updated.ID, ownerID)
	if err != nil {
		return nil, err
	}

	updated.CreatedBy = current.CreatedBy
	updated.CreatedAt = current.CreatedAt
	updated.IsPublished = current.IsPublished
	updated.UpdatedAt = time.Now()
	if len(updated.Images) == 0 {
		updated.Images = current.Images
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	urls, err := s.uploadImages(ctx, updated.ID, images)
	if err != nil {
		return nil, err
	}
	updated.Images = append(updated.Images, urls...)

	if updated.Location.Address != current.Location.Address || current.Coordinates == nil {
		s.resolveCoordinates(ctx, updated)
	} else {
		updated.Coordinates = current.Coordinates
		updated.GeoApprox = current.GeoApprox
	}

	if err := s.Repo.Update(updated); err != nil {
		if errors.Is(err, listingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidate()
	return updated, nil
}

// SetPublished toggles public visibility. Unpublished listings disappear
// from public search but stay visible to the owner.
func (s *Service) SetPublished(id, ownerID string, published bool) (*models.Listing, error) {
	if _, err := s.mustOwn(id, ownerID); err != nil {
		return nil, err
	}
	if err := s.Repo.SetPublished(id, published); err != nil {
		if errors.Is(err, listingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidate()
	return s.GetByID(id)
}

// Delete permanently removes the listing. This is the destructive
// operation, distinct from unpublishing. Stored images are cleaned up
// best effort once the document is gone.
func (s *Service) Delete(id, ownerID string) error {
	current, err := s.mustOwn(id, ownerID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		if errors.Is(err, listingRepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.deleteImages(current.Images)
	s.invalidate()
	return nil
}

func (s *Service) mustOwn(id, ownerID string) (*models.Listing, error) {
	current, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if current.CreatedBy != ownerID {
		return nil, ErrNotOwner
	}
	return current, nil
}

func (s *Service) uploadImages(ctx context.Context, listingID string, images []*multipart.FileHeader) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if s.Storage == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}
	urls := make([]string, 0, len(images))
	for _, fh := range images {
		file, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded image %s: %w", fh.Filename, err)
		}
		url, err := s.Storage.Upload(ctx, file, "listings/"+listingID)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to store image %s: %w", fh.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// deleteImages removes the listing's stored images. Failures are logged
// only; the listing itself is already gone.
func (s *Service) deleteImages(urls []string) {
	if s.Storage == nil || len(urls) == 0 {
		return
	}
	logger := utils.GetLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, u := range urls {
		publicID := storage.PublicIDFromURL(u)
		if publicID == "" {
			continue
		}
		if err := s.Storage.Delete(ctx, publicID); err != nil {
			logger.Warn("failed to delete listing image", zap.String("publicID", publicID), zap.Error(err))
		}
	}
}

// resolveCoordinates geocodes the listing's address, degrading to the
// district centroid when the provider fails or has no result.
func (s *Service) resolveCoordinates(ctx context.Context, l *models.Listing) {
	logger := utils.GetLogger()
	if s.Geocoder == nil || l.Location.Address == "" {
		coords := geocode.FallbackPoint(l.Location.District)
		l.Coordinates = &coords
		l.GeoApprox = true
		return
	}

	gctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	address := l.Location.Address + ", " + l.Location.Commune + ", " + l.Location.Ville
	coords, err := s.Geocoder.Geocode(gctx, address)
	if err != nil {
		logger.Warn("Geocoding failed, using district fallback",
			zap.String("listingID", l.ID), zap.String("district", l.Location.District), zap.Error(err))
		fallback := geocode.FallbackPoint(l.Location.District)
		l.Coordinates = &fallback
		l.GeoApprox = true
		return
	}
	l.Coordinates = &coords
	l.GeoApprox = false
}

func (s *Service) invalidate() {
	if s.Search != nil {
		s.Search.Invalidate()
	}
}
