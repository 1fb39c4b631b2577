package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/billkhata/api/internal/billing"
	"github.com/billkhata/api/internal/shop"
	"github.com/billkhata/api/internal/store"
)

// Errors returned by the billing service.
var (
	ErrNoCurrentBill = errors.New("no bill in progress")
)

// Clock abstracts time so the simulated settlement wait can be driven by
// tests instead of a wall clock.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// BillStore defines the record store methods needed by the billing service.
// Satisfied by *store.Bills; narrow interface for testability.
type BillStore interface {
	CurrentBill(ctx context.Context) (billing.Bill, error)
	SetCurrentBill(ctx context.Context, b billing.Bill) error
	ClearCurrentBill(ctx context.Context) error
	PrependBill(ctx context.Context, b billing.Bill) error
}

// BillingService drives a bill from creation through payment to archival.
// At most one bill is in transit at a time, held in the current-bill slot.
type BillingService struct {
	store       BillStore
	clock       Clock
	settleDelay time.Duration
	loc         *time.Location
}

// NewBillingService creates a billing service. settleDelay simulates
// payment settlement before a paid bill is archived; zero disables it.
func NewBillingService(billStore BillStore, clock Clock, settleDelay time.Duration, loc *time.Location) *BillingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BillingService{store: billStore, clock: clock, settleDelay: settleDelay, loc: loc}
}

// Start validates the inputs, builds a new Due bill, and places it in the
// current-bill slot, replacing whatever was left there by an abandoned flow.
func (s *BillingService) Start(ctx context.Context, shopInfo shop.Info, customerName, customerPhone string, items []billing.LineItem) (billing.Bill, error) {
	bill, err := billing.Create(shopInfo, customerName, customerPhone, items, s.clock.Now().In(s.loc))
	if err != nil {
		return billing.Bill{}, err
	}
	if err := s.store.SetCurrentBill(ctx, bill); err != nil {
		return billing.Bill{}, fmt.Errorf("save current bill: %w", err)
	}
	return bill, nil
}

// Finalize marks the current bill as paid and archives it to history.
// The settlement wait is explicit and cancellable through ctx. If the
// history prepend fails the slot is restored to the Due bill, so nothing
// is lost and the payment can be retried; a half-applied archive is never
// left behind.
func (s *BillingService) Finalize(ctx context.Context, paymentMode string) (billing.Bill, error) {
	current, err := s.store.CurrentBill(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return billing.Bill{}, ErrNoCurrentBill
		}
		return billing.Bill{}, err
	}

	paid, err := billing.Finalize(current, paymentMode)
	if err != nil {
		return billing.Bill{}, err
	}

	if s.settleDelay > 0 {
		select {
		case <-ctx.Done():
			return billing.Bill{}, ctx.Err()
		case <-s.clock.After(s.settleDelay):
		}
	}

	if err := s.store.SetCurrentBill(ctx, paid); err != nil {
		return billing.Bill{}, fmt.Errorf("save paid bill: %w", err)
	}
	if err := s.store.PrependBill(ctx, paid); err != nil {
		if restoreErr := s.store.SetCurrentBill(ctx, current); restoreErr != nil {
			log.Printf("ERROR: restore current bill after failed archive: %v", restoreErr)
		}
		return billing.Bill{}, fmt.Errorf("archive bill: %w", err)
	}
	return paid, nil
}

// StartFresh clears the current-bill slot so a new billing flow can begin.
func (s *BillingService) StartFresh(ctx context.Context) error {
	return s.store.ClearCurrentBill(ctx)
}
