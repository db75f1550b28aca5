package service

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("user already exists")
	ErrInvalidUser        = errors.New("invalid user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no session")
	ErrInvalidSession     = errors.New("invalid session")
	ErrUserNotFound       = errors.New("user not found")

	ErrBlogNotFound   = errors.New("blog not found")
	ErrForbidden      = errors.New("blog not owned by user")
	ErrGeneration     = errors.New("blog generation failed")
	ErrSearchDisabled = errors.New("search is not configured")
)
