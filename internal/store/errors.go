// Package store holds the persistence layer: users in PostgreSQL, properties
// and interests in MongoDB, uploaded images in MinIO.
//
// Stores translate driver errors into the sentinel errors below so handlers
// never import pgx or mongo error types.
package store

import "errors"

var (
	// ErrNotFound is returned when a row or document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned on unique-key violations (email, or the
	// (buyer, property) interest pair).
	ErrDuplicate = errors.New("already exists")
)
