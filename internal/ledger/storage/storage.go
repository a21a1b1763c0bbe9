// Package storage defines persistence contracts for the auction ledger.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/gavelhq/gavel/internal/ledger/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// CreateAuctionInput carries everything needed to mint an asset into escrow
// and open an auction for it in one atomic step.
type CreateAuctionInput struct {
	Seller      domain.Account
	MetadataURI string
	MinPrice    int64
	BuyPrice    int64
	At          time.Time
}

// RightsStore persists per-account sale rights.
type RightsStore interface {
	// GrantSaleRight marks an account as an authorized seller. Idempotent.
	GrantSaleRight(ctx context.Context, account domain.Account, at time.Time) error
	// HasSaleRight reports whether an account may create auctions.
	// Unknown accounts default to false.
	HasSaleRight(ctx context.Context, account domain.Account) (bool, error)
}

// BalanceStore persists per-account value balances held by the ledger.
type BalanceStore interface {
	// Deposit adds funds to an account and returns the new balance.
	Deposit(ctx context.Context, account domain.Account, amount int64, at time.Time) (int64, error)
	// Balance returns the current balance. Unknown accounts hold zero.
	Balance(ctx context.Context, account domain.Account) (int64, error)
}

// AssetStore reads asset custody state.
type AssetStore interface {
	// GetAsset returns one minted asset, or ErrNotFound.
	GetAsset(ctx context.Context, id domain.AssetID) (domain.Asset, error)
	// EscrowedAssetCount returns the number of assets held by the ledger.
	EscrowedAssetCount(ctx context.Context) (int64, error)
}

// AuctionStore owns auction records and their transitions. Every mutation is
// atomic; the settlement transition also moves value and custody in the same
// transaction.
type AuctionStore interface {
	// CreateAuction mints a fresh asset into ledger escrow and opens an
	// active auction bound to it, atomically.
	CreateAuction(ctx context.Context, input CreateAuctionInput) (domain.Asset, domain.Auction, error)
	// GetAuction returns one auction record, or ErrNotFound.
	GetAuction(ctx context.Context, id domain.AuctionID) (domain.Auction, error)
	// RecordBid replaces the highest bid if amount is strictly greater,
	// using a compare-and-swap on the stored highest bid.
	RecordBid(ctx context.Context, id domain.AuctionID, bidder domain.Account, amount int64, at time.Time) error
	// SettleAuction transitions Active to Settled exactly once, debits the
	// winner, credits the seller, and releases custody to the winner. On any
	// guard failure nothing is applied.
	SettleAuction(ctx context.Context, id domain.AuctionID, winner domain.Account, price int64, at time.Time) error
	// CancelAuction transitions Active to Cancelled and returns custody to
	// the seller without moving value.
	CancelAuction(ctx context.Context, id domain.AuctionID, at time.Time) error
}
