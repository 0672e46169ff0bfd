package store

import "errors"

var (
	// ErrNotFound indicates a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a uniqueness conflict.
	ErrConflict = errors.New("record already exists")

	// ErrInsufficientStock indicates a stock decrement would drive the
	// movie's stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStale indicates a conditional update lost to a concurrent writer.
	ErrStale = errors.New("record changed concurrently")
)
