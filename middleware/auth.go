package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	userRepo "ndako/database/repository/user"
	"ndako/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// JWTAuthMiddleware validates the bearer token and checks its hash against
// the auth cache (falling back to the user record when the cache misses),
// so a revoked token is rejected even before it expires. On success the
// caller's userID is set in the context.
func JWTAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// Validate the token signature and expiration.
		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		computedHash := utils.HashToken(tokenString)

		cache := utils.GetAuthCacheClient()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		cachedHash, cacheErr := cache.Get(ctx, utils.AuthCachePrefix+userID).Result()
		cancel()

		switch {
		case cacheErr == nil:
			if cachedHash != computedHash {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token revoked"})
				return
			}
		case cacheErr == redis.Nil:
			// Cache miss: fall back to the stored hash.
			usr, err := users.GetByID(userID)
			if err != nil || usr == nil || usr.TokenHash != computedHash {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token mismatch or user not found"})
				return
			}
		default:
			// Auth cache unreachable; the signed token already passed
			// validation, so do not lock everyone out.
			usr, err := users.GetByID(userID)
			if err != nil || usr == nil || usr.TokenHash != computedHash {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token mismatch or user not found"})
				return
			}
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// OptionalJWTAuthMiddleware sets userID when a valid bearer token is
// present but never rejects the request. Public reads use it so owners can
// see their own unpublished listings.
func OptionalJWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if userID, err := utils.ExtractIDFromToken(tokenString); err == nil && userID != "" {
				c.Set("userID", userID)
			}
		}
		c.Next()
	}
}
