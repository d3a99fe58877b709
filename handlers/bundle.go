package handlers

import (
	userRepo "ndako/database/repository/user"
)

// HandlerBundle groups the handlers and the repositories the route
// middleware needs, so route registration takes a single value.
type HandlerBundle struct {
	UserRepo userRepo.UserRepository

	Auth    *AuthHandler
	Listing *ListingHandler
	Search  *SearchHandler
}
