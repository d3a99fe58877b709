package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"ndako/models"
	"ndako/services/listing"
	"ndako/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MyListingsHandler handles GET /api/listings/user/current: every listing
// owned by the caller, unpublished included.
func (h *ListingHandler) MyListingsHandler(c *gin.Context) {
	userID := c.GetString("userID")
	listings, err := h.ListingService.GetByOwner(userID)
	if err != nil {
		utils.GetLogger().Error("Failed to fetch own listings", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch listings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": nonNilListings(listings)})
}

// AddListingHandler handles POST /api/listings/add (multipart form).
func (h *ListingHandler) AddListingHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.GetString("userID")

	l, err := listingFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	images := form.File["images"]
	if len(images) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": models.ValidationErrors{
			{Field: "images", Message: "at least one image is required"},
		}})
		return
	}

	created, err := h.ListingService.Create(c.Request.Context(), userID, l, images)
	if err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
			return
		}
		logger.Error("Failed to create listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create listing"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateListingHandler handles PUT /api/listings/update/:id (multipart form).
func (h *ListingHandler) UpdateListingHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.GetString("userID")

	l, err := listingFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l.ID = c.Param("id")

	form, _ := c.MultipartForm()
	updated, err := h.ListingService.Update(c.Request.Context(), userID, l, fileHeaders(form, "images"))
	if err != nil {
		h.writeMutationError(c, logger, err, "update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteListingHandler handles DELETE /api/listings/:id. This is the
// destructive removal; unpublishing goes through the status endpoint.
func (h *ListingHandler) DeleteListingHandler(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")
	if err := h.ListingService.Delete(id, userID); err != nil {
		h.writeMutationError(c, utils.GetLogger(), err, "delete")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStatusHandler handles PATCH /api/listings/:id/status with
// {"isPublished": bool}.
func (h *ListingHandler) UpdateStatusHandler(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	var req struct {
		IsPublished *bool `json:"isPublished" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isPublished is required"})
		return
	}

	updated, err := h.ListingService.SetPublished(id, userID, *req.IsPublished)
	if err != nil {
		h.writeMutationError(c, utils.GetLogger(), err, "status update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ListingHandler) writeMutationError(c *gin.Context, logger *zap.Logger, err error, op string) {
	var verrs models.ValidationErrors
	switch {
	case errors.Is(err, listing.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found", "listingId": c.Param("id")})
	case errors.Is(err, listing.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
	default:
		logger.Error("Listing "+op+" failed", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + op + " listing"})
	}
}

// listingFromForm assembles a Listing from multipart form fields. The
// single "price" field is routed to the price slot selected by
// listingType; full validation happens in the service.
func listingFromForm(c *gin.Context) (*models.Listing, error) {
	l := &models.Listing{
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		TypeOfListing: models.PropertyType(c.PostForm("typeOfListing")),
		ListingType:   models.ListingType(c.PostForm("listingType")),
		Location: models.Location{
			Address:  c.PostForm("address"),
			Quartier: c.PostForm("quartier"),
			Commune:  c.PostForm("commune"),
			District: c.PostForm("district"),
			Ville:    c.PostForm("ville"),
		},
		Details: models.Details{
			Floor:      formInt(c, "floor"),
			Bedroom:    formInt(c, "bedroom"),
			Bathroom:   formInt(c, "bathroom"),
			Kitchen:    formInt(c, "kitchen"),
			DiningRoom: formInt(c, "diningRoom"),
		},
	}

	if raw := c.PostForm("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("price must be a number")
		}
		switch l.ListingType {
		case models.ListingRent:
			l.PriceMonthly = &price
		case models.ListingSale:
			l.PriceSale = &price
		case models.ListingDaily:
			l.PriceDaily = &price
		}
	}
	return l, nil
}

func fileHeaders(form *multipart.Form, key string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	return form.File[key]
}

func formInt(c *gin.Context, key string) int {
	raw := c.PostForm(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
