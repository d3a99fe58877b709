// Package storage uploads listing images to Cloudinary.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"ndako/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// StorageService defines the interface for image storage operations.
type StorageService interface {
	Upload(ctx context.Context, file io.Reader, destFolder string) (string, error)
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryStorageService implements StorageService using Cloudinary.
type CloudinaryStorageService struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorageService initializes the Cloudinary client from the
// application configuration.
func NewCloudinaryStorageService() (*CloudinaryStorageService, error) {
	cfg := config.AppConfig
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStorageService{cld: cld}, nil
}

// Upload stores the image in the given folder and returns its secure URL.
func (s *CloudinaryStorageService) Upload(ctx context.Context, file io.Reader, destFolder string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: destFolder})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("no URL returned for uploaded image")
	}
	return result.SecureURL, nil
}

// Delete removes an uploaded image by its public ID.
func (s *CloudinaryStorageService) Delete(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// PublicIDFromURL derives the public ID from a Cloudinary delivery URL
// (the path after "upload", minus the version segment and file extension).
// Returns "" for URLs that do not look like Cloudinary deliveries.
func PublicIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	uploadIdx := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx == -1 || uploadIdx+1 >= len(parts) {
		return ""
	}
	rest := parts[uploadIdx+1:]
	if isVersionSegment(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return ""
	}
	id := strings.Join(rest, "/")
	if dot := strings.LastIndex(id, "."); dot > strings.LastIndex(id, "/") {
		id = id[:dot]
	}
	return id
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
