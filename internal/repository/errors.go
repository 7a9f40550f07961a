// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// knowing which store produced them.
package repository

import "errors"

// ErrNotFound is returned when no row matches the requested primary key.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
