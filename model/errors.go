package model

import "errors"

// Error taxonomy shared by services and controllers. Services return these
// (usually wrapped); controllers translate them to HTTP statuses.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalid          = errors.New("invalid")
	ErrExpired          = errors.New("expired")
	ErrPermissionDenied = errors.New("permission denied")
	ErrRateLimited      = errors.New("rate limited")
)
