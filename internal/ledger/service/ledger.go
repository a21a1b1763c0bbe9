// Package service implements the auction ledger operations over the storage
// and event contracts.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gavelhq/gavel/internal/id"
	"github.com/gavelhq/gavel/internal/ledger/domain"
	"github.com/gavelhq/gavel/internal/ledger/event"
	"github.com/gavelhq/gavel/internal/ledger/storage"
	apperr "github.com/gavelhq/gavel/internal/platform/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gavelhq/gavel/internal/ledger/service"

// Stores groups the persistence contracts the ledger operates on.
type Stores struct {
	Rights   storage.RightsStore
	Balances storage.BalanceStore
	Assets   storage.AssetStore
	Auctions storage.AuctionStore
}

// Validate reports the first missing store contract.
func (s Stores) Validate() error {
	if s.Rights == nil {
		return errors.New("rights store is required")
	}
	if s.Balances == nil {
		return errors.New("balance store is required")
	}
	if s.Assets == nil {
		return errors.New("asset store is required")
	}
	if s.Auctions == nil {
		return errors.New("auction store is required")
	}
	return nil
}

// Ledger coordinates rights, custody, auction state, and settlement.
type Ledger struct {
	stores      Stores
	events      event.Publisher
	clock       func() time.Time
	idGenerator func() (string, error)
	tracer      trace.Tracer
	locks       *auctionLocks
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher sets the lifecycle event publisher.
func WithPublisher(publisher event.Publisher) Option {
	return func(l *Ledger) {
		if publisher != nil {
			l.events = publisher
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// New creates a Ledger over the provided stores.
func New(stores Stores, opts ...Option) (*Ledger, error) {
	if err := stores.Validate(); err != nil {
		return nil, err
	}
	ledger := &Ledger{
		stores:      stores,
		events:      event.NopPublisher{},
		clock:       time.Now,
		idGenerator: id.NewID,
		tracer:      otel.Tracer(tracerName),
		locks:       newAuctionLocks(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ledger)
		}
	}
	return ledger, nil
}

// Bootstrap seller-enables the operator account. Idempotent; called once at
// service startup.
func (l *Ledger) Bootstrap(ctx context.Context, operator domain.Account) error {
	if err := l.stores.Rights.GrantSaleRight(ctx, operator, l.clock().UTC()); err != nil {
		return fmt.Errorf("bootstrap operator sale right: %w", err)
	}
	return nil
}

// GrantSaleRight marks target as an authorized seller. Accounts may always
// grant themselves; granting another account requires the caller to already
// hold the right. Redundant grants succeed.
func (l *Ledger) GrantSaleRight(ctx context.Context, caller, target domain.Account) error {
	ctx, span := l.tracer.Start(ctx, "ledger.GrantSaleRight")
	defer span.End()

	if err := domain.ValidateAccount(caller); err != nil {
		return err
	}
	if err := domain.ValidateAccount(target); err != nil {
		return err
	}
	if caller != target {
		right, err := l.stores.Rights.HasSaleRight(ctx, caller)
		if err != nil {
			return fmt.Errorf("check caller sale right: %w", err)
		}
		if !right {
			return apperr.New(apperr.CodeUnauthorized, "caller lacks sale right to grant others")
		}
	}
	return l.stores.Rights.GrantSaleRight(ctx, target, l.clock().UTC())
}

// HasSaleRight reports whether an account may create auctions.
func (l *Ledger) HasSaleRight(ctx context.Context, account domain.Account) (bool, error) {
	return l.stores.Rights.HasSaleRight(ctx, account)
}

// Deposit adds attached value to an account and returns the new balance.
func (l *Ledger) Deposit(ctx context.Context, account domain.Account, amount int64) (int64, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.Deposit",
		trace.WithAttributes(attribute.Int64("deposit.amount", amount)))
	defer span.End()

	return l.stores.Balances.Deposit(ctx, account, amount, l.clock().UTC())
}

// Balance returns the value the ledger holds for an account.
func (l *Ledger) Balance(ctx context.Context, account domain.Account) (int64, error) {
	return l.stores.Balances.Balance(ctx, account)
}

// CustodianOf returns the current custodian of an asset.
func (l *Ledger) CustodianOf(ctx context.Context, assetID domain.AssetID) (domain.Account, error) {
	asset, err := l.stores.Assets.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", apperr.New(apperr.CodeUnknownAsset,
				fmt.Sprintf("asset %d was never minted", assetID))
		}
		return "", err
	}
	return asset.Custodian, nil
}

// EscrowedAssetCount returns the number of assets held by the ledger.
func (l *Ledger) EscrowedAssetCount(ctx context.Context) (int64, error) {
	return l.stores.Assets.EscrowedAssetCount(ctx)
}

// GetAuction returns one auction record.
func (l *Ledger) GetAuction(ctx context.Context, auctionID domain.AuctionID) (domain.Auction, error) {
	auction, err := l.stores.Auctions.GetAuction(ctx, auctionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Auction{}, apperr.New(apperr.CodeUnknownAuction,
				fmt.Sprintf("auction %d does not exist", auctionID))
		}
		return domain.Auction{}, err
	}
	return auction, nil
}

// AuctionStatus returns the lifecycle state of an auction.
func (l *Ledger) AuctionStatus(ctx context.Context, auctionID domain.AuctionID) (domain.AuctionStatus, error) {
	auction, err := l.GetAuction(ctx, auctionID)
	if err != nil {
		return domain.StatusUnspecified, err
	}
	return auction.Status, nil
}

// publish emits a lifecycle event. Publish failures are logged, never
// surfaced: the event sink is a side effect, not part of the operation.
func (l *Ledger) publish(ctx context.Context, evt event.Event) {
	if evt.ID == "" {
		if generated, err := l.idGenerator(); err == nil {
			evt.ID = generated
		}
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = l.clock().UTC()
	}
	if err := l.events.Publish(ctx, evt); err != nil {
		log.Printf("publish %s for auction %d: %v", evt.Type, evt.AuctionID, err)
	}
}
