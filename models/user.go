package models

import "time"

// User is an authenticated lister account.
type User struct {
	ID               string    `bson:"id" json:"id"`
	FirstName        string    `bson:"firstName" json:"firstName"`
	LastName         string    `bson:"lastName" json:"lastName"`
	PhoneNumber      string    `bson:"phoneNumber" json:"phoneNumber"`
	Email            string    `bson:"email" json:"email"`
	PasswordHash     string    `bson:"passwordHash" json:"-"`
	RefreshTokenHash string    `bson:"refreshTokenHash,omitempty" json:"-"`
	TokenHash        string    `bson:"tokenHash,omitempty" json:"-"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	User         *User  `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}
