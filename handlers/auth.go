package handlers

import (
	"errors"
	"net/http"

	"ndako/services/user"
	"ndako/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler exposes register, login and token refresh.
type AuthHandler struct {
	UserService *user.Service
}

func NewAuthHandler(svc *user.Service) *AuthHandler {
	return &AuthHandler{UserService: svc}
}

// RegisterHandler handles POST /api/users/register.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req user.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	usr, err := h.UserService.Register(req)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed, please try again"})
		return
	}
	c.JSON(http.StatusCreated, usr)
}

// LoginHandler handles POST /api/users/login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.UserService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed, please try again"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshTokenHandler handles POST /api/users/refresh-token. A failed
// refresh clears the session; the client falls back to the login page.
func (h *AuthHandler) RefreshTokenHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.UserService.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": user.ErrInvalidRefreshToken.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  resp.Token,
		"refreshToken": resp.RefreshToken,
	})
}

// LogoutHandler handles POST /api/users/logout, revoking the caller's
// access and refresh tokens.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.UserService.RevokeSession(userID); err != nil {
		utils.GetLogger().Error("Logout failed", zap.String("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed, please try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
