package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gavelhq/gavel/internal/ledger/event"
	"github.com/gavelhq/gavel/internal/ledger/storage/sqlite"
	apperr "github.com/gavelhq/gavel/internal/platform/errors"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (c *capturePublisher) Publish(_ context.Context, evt event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *capturePublisher) types() []event.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]event.Type, 0, len(c.events))
	for _, evt := range c.events {
		types = append(types, evt.Type)
	}
	return types
}

func newTestLedger(t *testing.T) (*Ledger, *capturePublisher) {
	t.Helper()
	store, err := sqlite.Open(t.TempDir() + "/ledger.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	publisher := &capturePublisher{}
	ledger, err := New(Stores{
		Rights:   store,
		Balances: store,
		Assets:   store,
		Auctions: store,
	},
		WithPublisher(publisher),
		WithClock(func() time.Time {
			return time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
		}),
	)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return ledger, publisher
}

func TestNewRequiresStores(t *testing.T) {
	if _, err := New(Stores{}); err == nil {
		t.Fatal("expected error for missing stores")
	}
}

func TestBootstrapGrantsOperatorSaleRight(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	if err := ledger.Bootstrap(ctx, "operator"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	right, err := ledger.HasSaleRight(ctx, "operator")
	if err != nil {
		t.Fatalf("has sale right: %v", err)
	}
	if !right {
		t.Fatal("operator must hold sale right after bootstrap")
	}

	// Bootstrap is idempotent across restarts.
	if err := ledger.Bootstrap(ctx, "operator"); err != nil {
		t.Fatalf("re-bootstrap: %v", err)
	}
}

func TestSelfGrantIsAlwaysAllowed(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	right, err := ledger.HasSaleRight(ctx, "acc1")
	if err != nil {
		t.Fatalf("has sale right: %v", err)
	}
	if right {
		t.Fatal("acc1 must start without sale right")
	}

	if err := ledger.GrantSaleRight(ctx, "acc1", "acc1"); err != nil {
		t.Fatalf("self grant: %v", err)
	}
	right, err = ledger.HasSaleRight(ctx, "acc1")
	if err != nil {
		t.Fatalf("has sale right: %v", err)
	}
	if !right {
		t.Fatal("acc1 must hold sale right after self grant")
	}
}

func TestGrantToOthersRequiresRight(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	err := ledger.GrantSaleRight(ctx, "acc1", "acc2")
	if !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Fatalf("code = %s, want UNAUTHORIZED", apperr.GetCode(err))
	}

	if err := ledger.GrantSaleRight(ctx, "acc1", "acc1"); err != nil {
		t.Fatalf("self grant: %v", err)
	}
	if err := ledger.GrantSaleRight(ctx, "acc1", "acc2"); err != nil {
		t.Fatalf("grant by right holder: %v", err)
	}
	right, err := ledger.HasSaleRight(ctx, "acc2")
	if err != nil {
		t.Fatalf("has sale right: %v", err)
	}
	if !right {
		t.Fatal("acc2 must hold sale right after grant")
	}
}

func TestCustodianOfUnknownAsset(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.CustodianOf(context.Background(), 42)
	if !apperr.IsCode(err, apperr.CodeUnknownAsset) {
		t.Fatalf("code = %s, want UNKNOWN_ASSET", apperr.GetCode(err))
	}
}

func TestAuctionStatusUnknownAuction(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.AuctionStatus(context.Background(), 42)
	if !apperr.IsCode(err, apperr.CodeUnknownAuction) {
		t.Fatalf("code = %s, want UNKNOWN_AUCTION", apperr.GetCode(err))
	}
}

func TestDepositAndBalance(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	balance, err := ledger.Deposit(ctx, "acc1", 100)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if balance != 100 {
		t.Fatalf("balance = %d, want 100", balance)
	}
	balance, err = ledger.Balance(ctx, "acc1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("balance = %d, want 100", balance)
	}
}
