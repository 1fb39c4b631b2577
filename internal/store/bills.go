package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/billkhata/api/internal/billing"
)

const maxPrependRetries = 3

// Bills layers the billing record contract over a RecordStore: a single
// current-bill slot plus a newest-first history list.
type Bills struct {
	rs RecordStore
}

// NewBills wraps a RecordStore with the typed bill operations.
func NewBills(rs RecordStore) *Bills {
	return &Bills{rs: rs}
}

// CurrentBill reads the bill in the single in-flight slot. Returns
// ErrNotFound when the slot is empty. A slot holding malformed JSON is
// treated as empty: the record is unvalidated storage, never a crash.
func (b *Bills) CurrentBill(ctx context.Context) (billing.Bill, error) {
	raw, err := b.rs.Get(ctx, KeyCurrentBill)
	if err != nil {
		return billing.Bill{}, err
	}
	var bill billing.Bill
	if err := json.Unmarshal(raw, &bill); err != nil {
		log.Printf("WARN: malformed current bill record, treating slot as empty: %v", err)
		return billing.Bill{}, ErrNotFound
	}
	return bill, nil
}

// SetCurrentBill writes the slot.
func (b *Bills) SetCurrentBill(ctx context.Context, bill billing.Bill) error {
	raw, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("encode current bill: %w", err)
	}
	return b.rs.Set(ctx, KeyCurrentBill, raw)
}

// ClearCurrentBill empties the slot.
func (b *Bills) ClearCurrentBill(ctx context.Context) error {
	return b.rs.Remove(ctx, KeyCurrentBill)
}

// History returns the finalized bills, newest first, plus the number of
// entries that could not be decoded. Malformed entries are skipped one by
// one rather than discarding the whole list; a malformed list is recovered
// as empty. Only genuine store failures surface as errors.
func (b *Bills) History(ctx context.Context) ([]billing.Bill, int, error) {
	raw, err := b.rs.Get(ctx, KeyBillsHistory)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []billing.Bill{}, 0, nil
		}
		return nil, 0, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Printf("WARN: malformed bills history record, recovering as empty: %v", err)
		return []billing.Bill{}, 0, nil
	}

	bills := make([]billing.Bill, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		var bill billing.Bill
		if err := json.Unmarshal(entry, &bill); err != nil {
			skipped++
			continue
		}
		bills = append(bills, bill)
	}
	if skipped > 0 {
		log.Printf("WARN: skipped %d malformed bills in history", skipped)
	}
	return bills, skipped, nil
}

// PrependBill atomically adds a finalized bill to the front of the history
// list. The read-modify-write runs under optimistic concurrency: a version
// conflict means another writer got there first, so the list is re-read and
// the prepend retried. Undecodable existing entries are carried through
// untouched. All-or-nothing from the caller's perspective.
func (b *Bills) PrependBill(ctx context.Context, bill billing.Bill) error {
	newEntry, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("encode bill: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxPrependRetries; attempt++ {
		var entries []json.RawMessage
		version := int64(0)

		raw, v, err := b.rs.GetVersioned(ctx, KeyBillsHistory)
		switch {
		case errors.Is(err, ErrNotFound):
			// first bill ever; version stays 0
		case err != nil:
			return err
		default:
			version = v
			if err := json.Unmarshal(raw, &entries); err != nil {
				log.Printf("WARN: malformed bills history record, rebuilding from empty: %v", err)
				entries = nil
			}
		}

		updated := make([]json.RawMessage, 0, len(entries)+1)
		updated = append(updated, newEntry)
		updated = append(updated, entries...)

		value, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("encode history: %w", err)
		}

		err = b.rs.CompareAndSet(ctx, KeyBillsHistory, value, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("prepend bill: %w", lastErr)
}
