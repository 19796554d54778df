// Package database defines the key-value storage contract the daemon's
// persistence layers are written against, with pebble and in-memory
// implementations.
package database

import (
	"context"
)

// DB is the operation set every key-value backend must support.
type DB interface {
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies ops atomically: either all take effect or none do.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iterator traverses keys in [start, end] in ascending order. A nil
	// start begins at the first key; a nil end runs to the last.
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)
}

// Iterator walks database entries. Next must be called before the first Key
// or Value access.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation is a single put or delete inside an atomic batch.
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)
