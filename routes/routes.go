package routes

import (
	"net/http"
	"time"

	"ndako/handlers"
	"ndako/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers the auth endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.POST("/register", hb.Auth.RegisterHandler)
		api.POST("/login", hb.Auth.LoginHandler)
		api.POST("/refresh-token", hb.Auth.RefreshTokenHandler)
		api.POST("/logout", middleware.JWTAuthMiddleware(hb.UserRepo), hb.Auth.LogoutHandler)
	}
}

// RegisterListingRoutes registers public reads and owner-only writes.
func RegisterListingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/listings")
	{
		// Public endpoints. Single-listing reads take an optional token so
		// owners can open their own unpublished listings.
		api.GET("", hb.Listing.ListListingsHandler)
		api.GET("/featured", hb.Listing.FeaturedListingsHandler)
		api.GET("/:id", middleware.OptionalJWTAuthMiddleware(), hb.Listing.GetListingHandler)

		// Endpoints that read or modify the caller's own listings require
		// strict authentication.
		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		protected.GET("/user/current", hb.Listing.MyListingsHandler)
		protected.POST("/add", hb.Listing.AddListingHandler)
		protected.PUT("/update/:id", hb.Listing.UpdateListingHandler)
		protected.DELETE("/:id", hb.Listing.DeleteListingHandler)
		protected.PATCH("/:id/status", hb.Listing.UpdateStatusHandler)
	}
}

// RegisterSearchRoutes registers the search-results screen endpoints.
func RegisterSearchRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/search")
	{
		api.GET("", hb.Search.SearchPageHandler)
		api.GET("/locations", hb.Search.LocationsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Ndako"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterUserRoutes(r, hb)
	RegisterListingRoutes(r, hb)
	RegisterSearchRoutes(r, hb)
	RegisterHealthRoute(r)
}
