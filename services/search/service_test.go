package search

import (
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	listingRepo "ndako/database/repository/listing"
	"ndako/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListingRepo struct {
	published []models.Listing
	err       error
	calls     int
}

func (r *fakeListingRepo) GetByID(id string) (*models.Listing, error) {
	for i := range r.published {
		if r.published[i].ID == id {
			return &r.published[i], nil
		}
	}
	return nil, listingRepo.ErrNotFound
}

func (r *fakeListingRepo) GetPublished() ([]models.Listing, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Listing, len(r.published))
	copy(out, r.published)
	return out, nil
}

func (r *fakeListingRepo) GetByOwner(ownerID string) ([]models.Listing, error) { return nil, nil }
func (r *fakeListingRepo) GetWithoutCoordinates(limit int) ([]models.Listing, error) {
	return nil, nil
}
func (r *fakeListingRepo) Create(l *models.Listing) error                    { return nil }
func (r *fakeListingRepo) Update(l *models.Listing) error                    { return nil }
func (r *fakeListingRepo) SetPublished(id string, published bool) error      { return nil }
func (r *fakeListingRepo) Delete(id string) error                            { return nil }
func (r *fakeListingRepo) SetCoordinates(id string, c models.Coordinates, a bool) error {
	return nil
}

func newTestService(repo *fakeListingRepo) *Service {
	return NewService(repo, nil, testVille, time.Minute)
}

func TestSearchPageEchoesCanonicalQuery(t *testing.T) {
	repo := &fakeListingRepo{published: []models.Listing{
		rentListing("r1", "Gombe", 400, 2),
		rentListing("r2", "Ngaliema", 700, 3),
	}}
	svc := newTestService(repo)

	values := url.Values{}
	values.Set("commune", "Gombe")
	values.Set("utm_source", "newsletter")

	res, err := svc.SearchPage(values, SortDefault, 0, 20)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Cards, 1)
	assert.Equal(t, "r1", res.Cards[0].ID)
	assert.Equal(t, "Gombe", res.Filters.Commune)

	// The canonical query never carries unrecognized keys.
	echoed, err := url.ParseQuery(res.Query)
	require.NoError(t, err)
	assert.Equal(t, "Gombe", echoed.Get("commune"))
	assert.Empty(t, echoed.Get("utm_source"))
}

func TestSearchPagePaginatesCardsButKeepsAllMarkers(t *testing.T) {
	listings := make([]models.Listing, 5)
	for i := range listings {
		l := rentListing(string(rune('a'+i)), "Gombe", 400, 2)
		l.Coordinates = &models.Coordinates{Latitude: -4.3, Longitude: 15.3}
		listings[i] = l
	}
	svc := newTestService(&fakeListingRepo{published: listings})

	res, err := svc.SearchPage(url.Values{}, SortDefault, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Total)
	assert.Len(t, res.Cards, 2)
	// The map shows every match regardless of the card page.
	assert.Len(t, res.Markers, 5)
}

func TestSnapshotIsReusedUntilInvalidated(t *testing.T) {
	repo := &fakeListingRepo{published: []models.Listing{rentListing("r1", "Gombe", 400, 2)}}
	svc := newTestService(repo)

	_, err := svc.Featured(1)
	require.NoError(t, err)
	_, err = svc.Featured(1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	svc.Invalidate()
	_, err = svc.Featured(1)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestSnapshotServesStaleOnRepoFailure(t *testing.T) {
	repo := &fakeListingRepo{published: []models.Listing{rentListing("r1", "Gombe", 400, 2)}}
	svc := newTestService(repo)

	res, err := svc.SearchPage(url.Values{}, SortDefault, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	repo.err = errors.New("mongo unavailable")
	svc.Invalidate()

	res, err = svc.SearchPage(url.Values{}, SortDefault, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}

// blockingListingRepo stalls the first GetPublished until released, so a
// write can land while that reload is in flight.
type blockingListingRepo struct {
	mu        sync.Mutex
	published []models.Listing
	stalled   bool
	started   chan struct{}
	release   chan struct{}
}

func (r *blockingListingRepo) GetPublished() ([]models.Listing, error) {
	r.mu.Lock()
	out := make([]models.Listing, len(r.published))
	copy(out, r.published)
	first := !r.stalled
	r.stalled = true
	r.mu.Unlock()

	if first {
		r.started <- struct{}{}
		<-r.release
	}
	return out, nil
}

func (r *blockingListingRepo) replacePublished(listings []models.Listing) {
	r.mu.Lock()
	r.published = listings
	r.mu.Unlock()
}

func (r *blockingListingRepo) GetByID(id string) (*models.Listing, error) {
	return nil, listingRepo.ErrNotFound
}
func (r *blockingListingRepo) GetByOwner(ownerID string) ([]models.Listing, error) { return nil, nil }
func (r *blockingListingRepo) GetWithoutCoordinates(limit int) ([]models.Listing, error) {
	return nil, nil
}
func (r *blockingListingRepo) Create(l *models.Listing) error               { return nil }
func (r *blockingListingRepo) Update(l *models.Listing) error               { return nil }
func (r *blockingListingRepo) SetPublished(id string, published bool) error { return nil }
func (r *blockingListingRepo) SetCoordinates(id string, c models.Coordinates, a bool) error {
	return nil
}
func (r *blockingListingRepo) Delete(id string) error { return nil }

func TestWriteDuringReloadIsNotLost(t *testing.T) {
	repo := &blockingListingRepo{
		published: []models.Listing{rentListing("old", "Gombe", 400, 2)},
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	svc := NewService(repo, nil, testVille, time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = svc.Listings(url.Values{}, SortDefault)
	}()
	<-repo.started

	// A listing write lands while the reload above is still fetching.
	repo.replacePublished([]models.Listing{rentListing("new", "Gombe", 500, 2)})
	svc.Invalidate()

	close(repo.release)
	<-done

	// The stalled reload carried pre-write data; it must not have been
	// installed as a fresh snapshot.
	listings, _, err := svc.Listings(url.Values{}, SortDefault)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "new", listings[0].ID)
}

func TestSnapshotFailureWithNothingToServe(t *testing.T) {
	repo := &fakeListingRepo{err: errors.New("mongo unavailable")}
	svc := newTestService(repo)

	_, err := svc.SearchPage(url.Values{}, SortDefault, 0, 20)
	assert.Error(t, err)
}

func TestSnapshotNormalizesMissingVille(t *testing.T) {
	noVille := rentListing("r1", "Gombe", 400, 2)
	noVille.Location.Ville = ""
	svc := newTestService(&fakeListingRepo{published: []models.Listing{noVille}})

	listings, filters, err := svc.Listings(url.Values{}, SortDefault)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, testVille, listings[0].Location.Ville)
	assert.Equal(t, testVille, filters.Ville)
}

func TestLocationsReflectsSnapshot(t *testing.T) {
	svc := newTestService(&fakeListingRepo{published: []models.Listing{
		rentListing("r1", "Gombe", 400, 2),
		rentListing("r2", "Ngaliema", 700, 3),
	}})

	idx, err := svc.Locations()
	require.NoError(t, err)
	assert.Equal(t, []string{"Gombe", "Ngaliema"}, idx.Communes)
	assert.Equal(t, []string{"Gombe", "Ngaliema"}, idx.CommunesFor("Funa"))
}
