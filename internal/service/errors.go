package service

import "errors"

var (
	// ErrUnauthorizedFilter is returned when a favorites or cart filter is
	// requested without an authenticated user
	ErrUnauthorizedFilter = errors.New("membership filter requires an authenticated user")
	// ErrAlreadyExists is returned when adding a pair that is already present
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound is returned for absent relations and unknown recipes or users
	ErrNotFound                  = errors.New("not found")
	ErrSelfSubscriptionForbidden = errors.New("cannot subscribe to yourself")
	ErrInvalidRecipe             = errors.New("invalid recipe")
	ErrForbidden                 = errors.New("forbidden")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrInvalidToken              = errors.New("invalid token")
)
