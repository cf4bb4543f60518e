// Package store is the record-oriented Data Store collaborator. Everything
// the service persists goes through this interface, so tests can substitute
// the in-memory implementation for the Mongo one.
package store

import (
	"context"
	"errors"
)

// Table names.
const (
	TableStaff     = "staff"
	TablePending   = "staff_pending"
	TableUsers     = "users"
	TableProfiles  = "profiles"
	TableInterests = "user_interests"
	TablePurposes  = "user_purposes"
	TableBookings  = "bookings"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: unique constraint violation")
)

// Filter is a set of equality predicates on named columns.
type Filter map[string]any

// Patch is a partial update: column -> new value.
type Patch map[string]any

// Order sorts by a single named column.
type Order struct {
	Field string
	Desc  bool
}

type Store interface {
	// Select decodes all matching rows into out, which must be a pointer
	// to a slice.
	Select(ctx context.Context, table string, filter Filter, order *Order, out any) error

	// SelectOne decodes a single matching row into out, or returns
	// ErrNotFound.
	SelectOne(ctx context.Context, table string, filter Filter, out any) error

	// Insert writes the given documents. Returns ErrConflict if a unique
	// constraint on the table is violated.
	Insert(ctx context.Context, table string, docs ...any) error

	// Update applies patch to every row matching filter and returns the
	// number of matched rows.
	Update(ctx context.Context, table string, filter Filter, patch Patch) (int64, error)

	// Delete removes every row matching filter and returns the number
	// removed.
	Delete(ctx context.Context, table string, filter Filter) (int64, error)
}
