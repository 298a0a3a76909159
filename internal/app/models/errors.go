package models

import "errors"

// Domain specific errors shared across repositories, services and handlers.
var (
	ErrNotFound           = errors.New("requested item not found")
	ErrConflict           = errors.New("item already exists or conflict")
	ErrUnauthenticated    = errors.New("authentication required or invalid credentials")
	ErrForbidden          = errors.New("action forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrValidation         = errors.New("validation failed")
	ErrRateLimited        = errors.New("too many requests")
	ErrTimeout            = errors.New("request timed out")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrDependencyExists   = errors.New("related records exist")
	ErrDataValidation     = errors.New("assembled data failed validation")
)
