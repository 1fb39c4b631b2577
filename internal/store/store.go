package store

import (
	"context"
	"errors"
)

// Record keys used by the billing flow. Key names keep the original record
// format so existing data remains readable.
const (
	KeyCurrentBill  = "currentBill"
	KeyBillsHistory = "billsHistory"
)

// Errors returned by record stores.
var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record version conflict")
)

// RecordStore is a string-keyed store of JSON blobs. Every record carries a
// version that increments on each write, so read-modify-write sequences can
// detect concurrent writers via CompareAndSet instead of silently losing
// updates.
type RecordStore interface {
	// Get returns the stored blob, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// GetVersioned returns the blob and its current version. Absent keys
	// report ErrNotFound; version 0 is reserved for "key does not exist".
	GetVersioned(ctx context.Context, key string) ([]byte, int64, error)
	// Set writes the blob unconditionally.
	Set(ctx context.Context, key string, value []byte) error
	// CompareAndSet writes the blob only if the stored version still equals
	// version (0 meaning the key must not exist yet). Returns
	// ErrVersionConflict otherwise.
	CompareAndSet(ctx context.Context, key string, value []byte, version int64) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
