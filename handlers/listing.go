package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ndako/models"
	"ndako/services/listing"
	"ndako/services/search"
	"ndako/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListingHandler exposes the public listing reads.
type ListingHandler struct {
	ListingService *listing.Service
	SearchService  *search.Service
}

func NewListingHandler(listingSvc *listing.Service, searchSvc *search.Service) *ListingHandler {
	return &ListingHandler{ListingService: listingSvc, SearchService: searchSvc}
}

// ListListingsHandler handles GET /api/listings. The query string carries
// the filter fields and optional sort/page/pageSize; the response always
// wraps the collection as {"listings": [...]}.
func (h *ListingHandler) ListListingsHandler(c *gin.Context) {
	logger := utils.GetLogger()

	sortBy := c.DefaultQuery("sort", search.SortDefault)
	matched, filters, err := h.SearchService.Listings(c.Request.URL.Query(), sortBy)
	if err != nil {
		logger.Error("Failed to load listings", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load listings, please retry"})
		return
	}

	page := intQuery(c, "page", 0)
	pageSize := intQuery(c, "pageSize", 0)
	window := matched
	if pageSize > 0 {
		window = search.Paginate(matched, pageSize, page)
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": nonNilListings(window),
		"total":    len(matched),
		"page":     page,
		"pageSize": pageSize,
		"query":    filters.EncodeQuery(),
	})
}

// GetListingHandler handles GET /api/listings/:id. A missing listing gets
// a dedicated not-found payload rather than a generic error; an
// unpublished one is only shown to its owner.
func (h *ListingHandler) GetListingHandler(c *gin.Context) {
	id := c.Param("id")
	l, err := h.ListingService.GetByID(id)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found", "listingId": id})
			return
		}
		utils.GetLogger().Error("Failed to fetch listing", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch listing"})
		return
	}
	if !l.IsPublished && c.GetString("userID") != l.CreatedBy {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found", "listingId": id})
		return
	}
	c.JSON(http.StatusOK, l)
}

// FeaturedListingsHandler handles GET /api/listings/featured?count=N with
// a uniformly random draw from the published pool.
func (h *ListingHandler) FeaturedListingsHandler(c *gin.Context) {
	count := intQuery(c, "count", 4)
	listings, err := h.SearchService.Featured(count)
	if err != nil {
		utils.GetLogger().Error("Failed to load featured listings", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load listings, please retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": nonNilListings(listings)})
}

// nonNilListings keeps empty results encoding as [] instead of null.
func nonNilListings(listings []models.Listing) []models.Listing {
	if listings == nil {
		return []models.Listing{}
	}
	return listings
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
