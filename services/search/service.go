package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	listingRepo "ndako/database/repository/listing"
	"ndako/models"
	"ndako/services/location"
	"ndako/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const snapshotCacheKey = "listings:snapshot"

// Result is the search-results screen payload: cards for the grid, markers
// for the map, and the canonical query the results were computed for. The
// client replaces its URL with Query and discards any response whose Query
// no longer matches its current filter state (last-write-wins on filter
// identity, not arrival order).
type Result struct {
	Cards    []Card      `json:"cards"`
	Markers  []Marker    `json:"markers"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
	Sort     string      `json:"sort"`
	Filters  FilterState `json:"filters"`
	Query    string      `json:"query"`
}

// Service serves searches from an in-memory snapshot of the published
// listings, shared through Redis and rebuilt when stale. The LocationIndex
// is recomputed with every snapshot, never incrementally maintained.
type Service struct {
	Repo         listingRepo.ListingRepository
	Cache        *redis.Client
	DefaultVille string
	SnapshotTTL  time.Duration

	mu         sync.Mutex
	listings   []models.Listing
	index      *location.Index
	loadedAt   time.Time
	generation uint64
}

// NewService wires a search service with the given repository and cache.
func NewService(repo listingRepo.ListingRepository, cache *redis.Client, defaultVille string, ttl time.Duration) *Service {
	return &Service{
		Repo:         repo,
		Cache:        cache,
		DefaultVille: defaultVille,
		SnapshotTTL:  ttl,
	}
}

// SearchPage runs the full pipeline for a query string: parse filters,
// aggregate, paginate, present.
func (s *Service) SearchPage(values url.Values, sortBy string, page, pageSize int) (*Result, error) {
	listings, idx, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	filters := InitFromQuery(values, idx, s.DefaultVille)
	matched := Search(listings, filters, sortBy)
	window := Paginate(matched, pageSize, page)
	return &Result{
		Cards:    ToCards(window),
		Markers:  ToMarkers(matched),
		Total:    len(matched),
		Page:     page,
		PageSize: pageSize,
		Sort:     sortBy,
		Filters:  filters,
		Query:    filters.EncodeQuery(),
	}, nil
}

// Listings returns the filtered, sorted raw listings for a query string.
func (s *Service) Listings(values url.Values, sortBy string) ([]models.Listing, FilterState, error) {
	listings, idx, err := s.snapshot()
	if err != nil {
		return nil, FilterState{}, err
	}
	filters := InitFromQuery(values, idx, s.DefaultVille)
	return Search(listings, filters, sortBy), filters, nil
}

// Featured returns n published listings drawn uniformly at random for the
// homepage pool.
func (s *Service) Featured(n int) ([]models.Listing, error) {
	listings, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return SampleRandom(listings, n), nil
}

// Locations returns the current LocationIndex for the filter dropdowns.
func (s *Service) Locations() (*location.Index, error) {
	_, idx, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Invalidate drops the snapshot after a listing write so the next search
// observes the change. Bumping the generation also rejects any reload
// that was already in flight when the write landed; its data may predate
// the write.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.loadedAt = time.Time{}
	s.generation++
	s.mu.Unlock()

	if s.Cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Cache.Del(ctx, snapshotCacheKey).Err(); err != nil {
			utils.GetLogger().Warn("failed to drop listing snapshot from cache", zap.Error(err))
		}
	}
}

// snapshot returns the current listings and index, reloading when stale.
func (s *Service) snapshot() ([]models.Listing, *location.Index, error) {
	for {
		s.mu.Lock()
		if s.index != nil && time.Since(s.loadedAt) < s.SnapshotTTL {
			listings, idx := s.listings, s.index
			s.mu.Unlock()
			return listings, idx, nil
		}
		gen := s.generation
		s.mu.Unlock()

		listings, fromCache, err := s.loadListings()
		if err != nil {
			// Serve the stale snapshot if there is one; the failure is
			// surfaced only when there is nothing to show.
			s.mu.Lock()
			if s.index != nil {
				listings, idx := s.listings, s.index
				s.mu.Unlock()
				utils.GetLogger().Warn("serving stale listing snapshot", zap.Error(err))
				return listings, idx, nil
			}
			s.mu.Unlock()
			return nil, nil, fmt.Errorf("failed to load listings: %w", err)
		}
		idx := location.Build(listings, s.DefaultVille)

		s.mu.Lock()
		// A slow reload must never clobber a snapshot installed after it
		// started; only a fetch issued against the current generation wins.
		if s.generation != gen {
			if s.index != nil {
				listings, idx = s.listings, s.index
				s.mu.Unlock()
				return listings, idx, nil
			}
			// No snapshot to fall back on yet; fetch again.
			s.mu.Unlock()
			continue
		}
		s.listings = listings
		s.index = idx
		s.loadedAt = time.Now()
		s.generation++
		s.mu.Unlock()

		if !fromCache {
			s.cacheSnapshot(listings, gen+1)
		}
		return listings, idx, nil
	}
}

// loadListings fetches published listings from the Redis snapshot when
// present, otherwise from the repository, normalizing ville to the default
// city when absent.
func (s *Service) loadListings() ([]models.Listing, bool, error) {
	if s.Cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		data, err := s.Cache.Get(ctx, snapshotCacheKey).Bytes()
		cancel()
		if err == nil {
			var listings []models.Listing
			if err := json.Unmarshal(data, &listings); err == nil {
				return listings, true, nil
			}
			utils.GetLogger().Warn("discarding corrupt listing snapshot in cache")
		} else if err != redis.Nil {
			utils.GetLogger().Warn("listing snapshot cache unavailable", zap.Error(err))
		}
	}

	listings, err := s.Repo.GetPublished()
	if err != nil {
		return nil, false, err
	}
	for i := range listings {
		if listings[i].Location.Ville == "" {
			listings[i].Location.Ville = s.DefaultVille
		}
	}
	return listings, false, nil
}

// cacheSnapshot writes the snapshot to Redis unless another invalidation
// landed since it was installed; a write may have deleted the key and the
// stale data must not repopulate it.
func (s *Service) cacheSnapshot(listings []models.Listing, wantGen uint64) {
	if s.Cache == nil {
		return
	}
	s.mu.Lock()
	current := s.generation
	s.mu.Unlock()
	if current != wantGen {
		return
	}

	data, err := json.Marshal(listings)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Cache.Set(ctx, snapshotCacheKey, data, s.SnapshotTTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache listing snapshot", zap.Error(err))
	}
}
