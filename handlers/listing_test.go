package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	listingRepo "ndako/database/repository/listing"
	"ndako/models"
	listingSvc "ndako/services/listing"
	"ndako/services/search"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubListingRepo struct {
	listings []models.Listing
}

func (r *stubListingRepo) GetByID(id string) (*models.Listing, error) {
	for i := range r.listings {
		if r.listings[i].ID == id {
			cp := r.listings[i]
			return &cp, nil
		}
	}
	return nil, listingRepo.ErrNotFound
}

func (r *stubListingRepo) GetPublished() ([]models.Listing, error) {
	var out []models.Listing
	for _, l := range r.listings {
		if l.IsPublished {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stubListingRepo) GetByOwner(ownerID string) ([]models.Listing, error) {
	var out []models.Listing
	for _, l := range r.listings {
		if l.CreatedBy == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stubListingRepo) GetWithoutCoordinates(limit int) ([]models.Listing, error) {
	return nil, nil
}
func (r *stubListingRepo) Create(l *models.Listing) error               { return nil }
func (r *stubListingRepo) Update(l *models.Listing) error               { return nil }
func (r *stubListingRepo) SetPublished(id string, published bool) error { return nil }
func (r *stubListingRepo) SetCoordinates(id string, c models.Coordinates, a bool) error {
	return nil
}
func (r *stubListingRepo) Delete(id string) error { return nil }

func price(v float64) *float64 { return &v }

func publishedListing(id, commune string) models.Listing {
	return models.Listing{
		ID:            id,
		TypeOfListing: models.PropertyApartment,
		ListingType:   models.ListingRent,
		PriceMonthly:  price(450),
		Location:      models.Location{Commune: commune, Ville: "Kinshasa"},
		Details:       models.Details{Bedroom: 2, Bathroom: 1},
		IsPublished:   true,
		CreatedBy:     "owner-1",
	}
}

func newTestRouter(repo *stubListingRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	searchService := search.NewService(repo, nil, "Kinshasa", time.Minute)
	listingService := &listingSvc.Service{Repo: repo}
	h := NewListingHandler(listingService, searchService)
	sh := NewSearchHandler(searchService)

	router := gin.New()
	router.GET("/api/listings", h.ListListingsHandler)
	router.GET("/api/listings/featured", h.FeaturedListingsHandler)
	router.GET("/api/listings/:id", h.GetListingHandler)
	router.GET("/api/search", sh.SearchPageHandler)
	router.GET("/api/search/locations", sh.LocationsHandler)
	return router
}

func doGet(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	body := map[string]json.RawMessage{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestListListingsEnvelope(t *testing.T) {
	repo := &stubListingRepo{listings: []models.Listing{
		publishedListing("r1", "Gombe"),
		publishedListing("r2", "Ngaliema"),
	}}
	router := newTestRouter(repo)

	w, body := doGet(t, router, "/api/listings?commune=Gombe")
	require.Equal(t, http.StatusOK, w.Code)

	var listings []models.Listing
	require.NoError(t, json.Unmarshal(body["listings"], &listings))
	require.Len(t, listings, 1)
	assert.Equal(t, "r1", listings[0].ID)

	var total int
	require.NoError(t, json.Unmarshal(body["total"], &total))
	assert.Equal(t, 1, total)

	var query string
	require.NoError(t, json.Unmarshal(body["query"], &query))
	assert.Contains(t, query, "commune=Gombe")
}

func TestGetListingNotFoundPayload(t *testing.T) {
	router := newTestRouter(&stubListingRepo{})

	w, body := doGet(t, router, "/api/listings/ghost")
	require.Equal(t, http.StatusNotFound, w.Code)

	var id string
	require.NoError(t, json.Unmarshal(body["listingId"], &id))
	assert.Equal(t, "ghost", id)
}

func TestGetListingHidesUnpublishedFromPublic(t *testing.T) {
	hidden := publishedListing("r1", "Gombe")
	hidden.IsPublished = false
	router := newTestRouter(&stubListingRepo{listings: []models.Listing{hidden}})

	w, _ := doGet(t, router, "/api/listings/r1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetListingVisibleToOwner(t *testing.T) {
	hidden := publishedListing("r1", "Gombe")
	hidden.IsPublished = false
	repo := &stubListingRepo{listings: []models.Listing{hidden}}

	gin.SetMode(gin.TestMode)
	searchService := search.NewService(repo, nil, "Kinshasa", time.Minute)
	h := NewListingHandler(&listingSvc.Service{Repo: repo}, searchService)

	router := gin.New()
	router.GET("/api/listings/:id", func(c *gin.Context) {
		c.Set("userID", "owner-1")
		h.GetListingHandler(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/listings/r1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFeaturedReturnsRequestedCount(t *testing.T) {
	repo := &stubListingRepo{listings: []models.Listing{
		publishedListing("a", "Gombe"),
		publishedListing("b", "Gombe"),
		publishedListing("c", "Gombe"),
	}}
	router := newTestRouter(repo)

	w, body := doGet(t, router, "/api/listings/featured?count=2")
	require.Equal(t, http.StatusOK, w.Code)

	var listings []models.Listing
	require.NoError(t, json.Unmarshal(body["listings"], &listings))
	assert.Len(t, listings, 2)
}

func TestFeaturedZeroCountReturnsEmptyArray(t *testing.T) {
	repo := &stubListingRepo{listings: []models.Listing{
		publishedListing("a", "Gombe"),
	}}
	router := newTestRouter(repo)

	w, body := doGet(t, router, "/api/listings/featured?count=0")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(body["listings"]))
}

func TestListListingsEmptyMatchReturnsEmptyArray(t *testing.T) {
	repo := &stubListingRepo{listings: []models.Listing{
		publishedListing("r1", "Gombe"),
	}}
	router := newTestRouter(repo)

	w, body := doGet(t, router, "/api/listings?commune=Limete")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(body["listings"]))
}

func TestSearchPageReturnsCardsAndMarkers(t *testing.T) {
	withCoords := publishedListing("r1", "Gombe")
	withCoords.Coordinates = &models.Coordinates{Latitude: -4.3, Longitude: 15.3}
	repo := &stubListingRepo{listings: []models.Listing{
		withCoords,
		publishedListing("r2", "Ngaliema"),
	}}
	router := newTestRouter(repo)

	w, body := doGet(t, router, "/api/search?sort=price-low")
	require.Equal(t, http.StatusOK, w.Code)

	var cards []search.Card
	require.NoError(t, json.Unmarshal(body["cards"], &cards))
	assert.Len(t, cards, 2)

	var markers []search.Marker
	require.NoError(t, json.Unmarshal(body["markers"], &markers))
	require.Len(t, markers, 1)
	assert.Equal(t, "r1", markers[0].ID)
}

func TestLocationsEndpoint(t *testing.T) {
	repo := &stubListingRepo{listings: []models.Listing{
		publishedListing("r1", "Gombe"),
		publishedListing("r2", "Ngaliema"),
	}}
	router := newTestRouter(repo)

	w, body := doGet(t, router, "/api/search/locations")
	require.Equal(t, http.StatusOK, w.Code)

	var communes []string
	require.NoError(t, json.Unmarshal(body["communes"], &communes))
	assert.Equal(t, []string{"Gombe", "Ngaliema"}, communes)
}
