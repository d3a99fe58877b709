// Package geocode resolves free-text addresses to coordinates through a
// Nominatim-compatible provider, with a coarse district-level fallback so
// a slow or failing geocode never blocks a listing write.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"ndako/models"
	"ndako/utils"

	"go.uber.org/zap"
)

// ErrNotFound is returned when the provider has no result for the address.
var ErrNotFound = errors.New("address not found")

// Geocoder resolves an address to a coordinate pair.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.Coordinates, error)
}

// HTTPGeocoder queries a Nominatim-style JSON endpoint and caches results
// by address.
type HTTPGeocoder struct {
	BaseURL string
	Client  *http.Client

	mu    sync.RWMutex
	cache map[string]models.Coordinates
}

// NewHTTPGeocoder builds a geocoder against the given search endpoint.
func NewHTTPGeocoder(baseURL string) *HTTPGeocoder {
	return &HTTPGeocoder{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
		cache:   make(map[string]models.Coordinates),
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves the address, consulting the cache first. Provider
// failures are returned as errors so the caller can apply its fallback.
func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (models.Coordinates, error) {
	logger := utils.GetLogger()

	g.mu.RLock()
	if coords, ok := g.cache[address]; ok {
		g.mu.RUnlock()
		return coords, nil
	}
	g.mu.RUnlock()

	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to build geocode request: %w", err)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		logger.Error("Failed to query geocoding provider", zap.String("address", address), zap.Error(err))
		return models.Coordinates{}, fmt.Errorf("geocoding provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("Geocoding provider returned non-OK status", zap.String("address", address), zap.Int("status", resp.StatusCode))
		return models.Coordinates{}, fmt.Errorf("geocoding provider returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return models.Coordinates{}, ErrNotFound
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return models.Coordinates{}, fmt.Errorf("geocode response has malformed coordinates")
	}

	coords := models.Coordinates{Latitude: lat, Longitude: lon}
	g.mu.Lock()
	g.cache[address] = coords
	g.mu.Unlock()

	logger.Debug("Geocoded address", zap.String("address", address), zap.Float64("lat", lat), zap.Float64("lng", lon))
	return coords, nil
}
