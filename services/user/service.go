// Package user implements registration, login and token refresh for
// lister accounts.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	userRepo "ndako/database/repository/user"
	"ndako/models"
	"ndako/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service owns the auth flows.
type Service struct {
	Repo userRepo.UserRepository
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
}

// Register creates a new account with a bcrypt password hash.
func (s *Service) Register(in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if existing, err := s.Repo.GetByEmail(email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, userRepo.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	usr := &models.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(usr); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	utils.GetLogger().Info("User registered", zap.String("userID", usr.ID))
	return usr, nil
}

// Authenticate verifies the credentials and issues an access token plus a
// refresh token. Hashes of both are stored so either can be revoked.
func (s *Service) Authenticate(email, password string) (*models.AuthResponse, error) {
	usr, err := s.Repo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		utils.GetLogger().Error("Authenticate: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(usr)
}

// Refresh performs a single refresh-token rotation: a valid token yields a
// new access/refresh pair; anything else clears the session so the client
// is sent back to login.
func (s *Service) Refresh(refreshToken string) (*models.AuthResponse, error) {
	subject, err := utils.ExtractRefreshSubject(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	usr, err := s.Repo.GetByID(subject)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if usr.RefreshTokenHash == "" || usr.RefreshTokenHash != utils.HashToken(refreshToken) {
		// A mismatched token may be stolen or already rotated; drop the
		// whole session.
		s.clearSession(usr)
		return nil, ErrInvalidRefreshToken
	}

	return s.issueTokens(usr)
}

// RevokeSession invalidates the user's current tokens.
func (s *Service) RevokeSession(userID string) error {
	usr, err := s.Repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil
		}
		return err
	}
	s.clearSession(usr)
	return nil
}

func (s *Service) issueTokens(usr *models.User) (*models.AuthResponse, error) {
	token, err := utils.GenerateToken(usr.ID, usr.Email, utils.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	refresh, err := utils.GenerateRefreshToken(usr.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	usr.TokenHash = utils.HashToken(token)
	usr.RefreshTokenHash = utils.HashToken(refresh)
	usr.UpdatedAt = time.Now()
	if err := s.Repo.Update(usr); err != nil {
		return nil, fmt.Errorf("failed to store token hashes: %w", err)
	}

	// Cache the access-token hash; the auth middleware checks it without a
	// database round trip.
	cache := utils.GetAuthCacheClient()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.Set(ctx, utils.AuthCachePrefix+usr.ID, usr.TokenHash, utils.AccessTokenTTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache token hash", zap.String("userID", usr.ID), zap.Error(err))
	}

	return &models.AuthResponse{User: usr, Token: token, RefreshToken: refresh}, nil
}

func (s *Service) clearSession(usr *models.User) {
	usr.TokenHash = ""
	usr.RefreshTokenHash = ""
	usr.UpdatedAt = time.Now()
	if err := s.Repo.Update(usr); err != nil {
		utils.GetLogger().Error("failed to clear session", zap.String("userID", usr.ID), zap.Error(err))
	}

	cache := utils.GetAuthCacheClient()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.Del(ctx, utils.AuthCachePrefix+usr.ID).Err(); err != nil {
		utils.GetLogger().Warn("failed to drop cached token hash", zap.String("userID", usr.ID), zap.Error(err))
	}
}
