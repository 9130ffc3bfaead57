package services

import "errors"

// ErrInvalidInput marks a request that fails service-level validation.
// Handlers map it to a 400 response.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidState marks an operation that is not valid for the current
// lifecycle state of its target, e.g. executing a request that was never
// approved. Handlers map it to a 409 response.
var ErrInvalidState = errors.New("invalid state")
