package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/gavelhq/gavel/internal/ledger/domain"
	apperr "github.com/gavelhq/gavel/internal/platform/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir() + "/ledger.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testTime() time.Time {
	return time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
}

func TestSaleRightDefaultsFalse(t *testing.T) {
	store := openTestStore(t)

	right, err := store.HasSaleRight(context.Background(), "acc1")
	if err != nil {
		t.Fatalf("has sale right: %v", err)
	}
	if right {
		t.Fatal("unknown account must default to no sale right")
	}
}

func TestGrantSaleRightIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.GrantSaleRight(ctx, "acc1", testTime()); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := store.GrantSaleRight(ctx, "acc1", testTime().Add(time.Hour)); err != nil {
		t.Fatalf("redundant grant: %v", err)
	}

	right, err := store.HasSaleRight(ctx, "acc1")
	if err != nil {
		t.Fatalf("has sale right: %v", err)
	}
	if !right {
		t.Fatal("granted account must hold sale right")
	}
}

func TestGrantSaleRightPreservesBalance(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Deposit(ctx, "acc1", 500, testTime()); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := store.GrantSaleRight(ctx, "acc1", testTime()); err != nil {
		t.Fatalf("grant: %v", err)
	}

	balance, err := store.Balance(ctx, "acc1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 500 {
		t.Fatalf("balance = %d, want 500", balance)
	}
}

func TestDepositAccumulates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	balance, err := store.Deposit(ctx, "acc1", 100, testTime())
	if err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	if balance != 100 {
		t.Fatalf("balance = %d, want 100", balance)
	}

	balance, err = store.Deposit(ctx, "acc1", 50, testTime())
	if err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if balance != 150 {
		t.Fatalf("balance = %d, want 150", balance)
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	store := openTestStore(t)

	for _, amount := range []int64{0, -1} {
		_, err := store.Deposit(context.Background(), "acc1", amount, testTime())
		if !apperr.IsCode(err, apperr.CodeInvalidAmount) {
			t.Fatalf("amount %d: code = %s, want INVALID_AMOUNT", amount, apperr.GetCode(err))
		}
	}
}

func TestAccountValidationAtStoreBoundary(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.GrantSaleRight(ctx, domain.LedgerCustodian, testTime()); !apperr.IsCode(err, apperr.CodeInvalidAccount) {
		t.Fatalf("grant to ledger sentinel: code = %s, want INVALID_ACCOUNT", apperr.GetCode(err))
	}
	if _, err := store.Deposit(ctx, "", 10, testTime()); !apperr.IsCode(err, apperr.CodeInvalidAccount) {
		t.Fatalf("deposit to empty account: code = %s, want INVALID_ACCOUNT", apperr.GetCode(err))
	}
}

func TestBalanceUnknownAccountIsZero(t *testing.T) {
	store := openTestStore(t)

	balance, err := store.Balance(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("balance = %d, want 0", balance)
	}
}
