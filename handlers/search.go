package handlers

import (
	"net/http"

	"ndako/services/search"
	"ndako/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SearchHandler serves the search-results screen and the filter dropdowns.
type SearchHandler struct {
	SearchService *search.Service
}

func NewSearchHandler(svc *search.Service) *SearchHandler {
	return &SearchHandler{SearchService: svc}
}

// SearchPageHandler handles GET /api/search: cards for the grid, markers
// for the map, and the canonical query echo the client replaces its URL
// with. A response whose query no longer matches the client's current
// filter state is stale and must be discarded client-side.
func (h *SearchHandler) SearchPageHandler(c *gin.Context) {
	sortBy := c.DefaultQuery("sort", search.SortDefault)
	page := intQuery(c, "page", 0)
	pageSize := intQuery(c, "pageSize", 20)

	result, err := h.SearchService.SearchPage(c.Request.URL.Query(), sortBy, page, pageSize)
	if err != nil {
		utils.GetLogger().Error("Search failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load listings, please retry"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// LocationsHandler handles GET /api/search/locations with the value sets
// and relationship maps backing the dependent dropdowns.
func (h *SearchHandler) LocationsHandler(c *gin.Context) {
	idx, err := h.SearchService.Locations()
	if err != nil {
		utils.GetLogger().Error("Failed to build location index", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load locations, please retry"})
		return
	}
	c.JSON(http.StatusOK, idx)
}
