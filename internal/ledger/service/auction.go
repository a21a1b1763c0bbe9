package service

import (
	"context"
	"fmt"

	"github.com/gavelhq/gavel/internal/ledger/domain"
	"github.com/gavelhq/gavel/internal/ledger/event"
	"github.com/gavelhq/gavel/internal/ledger/storage"
	apperr "github.com/gavelhq/gavel/internal/platform/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CreateAuction mints a fresh asset into ledger escrow and opens an active
// auction for it. The caller must hold the sale right.
func (l *Ledger) CreateAuction(ctx context.Context, seller domain.Account, metadataURI string, minPrice, buyPrice int64) (domain.Asset, domain.Auction, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.CreateAuction",
		trace.WithAttributes(
			attribute.Int64("auction.min_price", minPrice),
			attribute.Int64("auction.buy_price", buyPrice),
		))
	defer span.End()

	if err := domain.ValidateAccount(seller); err != nil {
		return domain.Asset{}, domain.Auction{}, err
	}
	if err := domain.ValidateTerms(minPrice, buyPrice); err != nil {
		return domain.Asset{}, domain.Auction{}, err
	}

	right, err := l.stores.Rights.HasSaleRight(ctx, seller)
	if err != nil {
		return domain.Asset{}, domain.Auction{}, fmt.Errorf("check sale right: %w", err)
	}
	if !right {
		return domain.Asset{}, domain.Auction{}, apperr.New(apperr.CodeUnauthorized,
			"caller lacks sale right to create auctions")
	}

	asset, auction, err := l.stores.Auctions.CreateAuction(ctx, storage.CreateAuctionInput{
		Seller:      seller,
		MetadataURI: metadataURI,
		MinPrice:    minPrice,
		BuyPrice:    buyPrice,
		At:          l.clock().UTC(),
	})
	if err != nil {
		return domain.Asset{}, domain.Auction{}, err
	}

	l.publish(ctx, event.Event{
		Type:      event.TypeAuctionCreated,
		AuctionID: int64(auction.ID),
		AssetID:   int64(asset.ID),
		Account:   string(seller),
		Amount:    minPrice,
	})
	return asset, auction, nil
}

// PlaceBid records a new highest bid on an active auction.
func (l *Ledger) PlaceBid(ctx context.Context, auctionID domain.AuctionID, bidder domain.Account, amount int64) error {
	ctx, span := l.tracer.Start(ctx, "ledger.PlaceBid",
		trace.WithAttributes(
			attribute.Int64("auction.id", int64(auctionID)),
			attribute.Int64("bid.amount", amount),
		))
	defer span.End()

	unlock := l.locks.lock(auctionID)
	defer unlock()

	auction, err := l.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := auction.AcceptsBid(bidder, amount); err != nil {
		return err
	}
	if err := l.stores.Auctions.RecordBid(ctx, auctionID, bidder, amount, l.clock().UTC()); err != nil {
		return err
	}

	l.publish(ctx, event.Event{
		Type:      event.TypeBidPlaced,
		AuctionID: int64(auctionID),
		AssetID:   int64(auction.AssetID),
		Account:   string(bidder),
		Amount:    amount,
	})
	return nil
}

// BuyNow settles an active auction immediately at its buy-now price. The
// attached amount must meet the buy-now price; settlement debits the buy-now
// price from the buyer in the same operation.
func (l *Ledger) BuyNow(ctx context.Context, auctionID domain.AuctionID, buyer domain.Account, amount int64) error {
	ctx, span := l.tracer.Start(ctx, "ledger.BuyNow",
		trace.WithAttributes(
			attribute.Int64("auction.id", int64(auctionID)),
			attribute.Int64("buy.amount", amount),
		))
	defer span.End()

	unlock := l.locks.lock(auctionID)
	defer unlock()

	auction, err := l.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := auction.AcceptsBuyNow(buyer, amount); err != nil {
		return err
	}
	if err := l.stores.Auctions.SettleAuction(ctx, auctionID, buyer, auction.BuyPrice, l.clock().UTC()); err != nil {
		return err
	}

	l.publish(ctx, event.Event{
		Type:      event.TypeAuctionSettled,
		AuctionID: int64(auctionID),
		AssetID:   int64(auction.AssetID),
		Account:   string(buyer),
		Amount:    auction.BuyPrice,
	})
	return nil
}

// CloseAuction lets the seller end an active auction. With a highest bidder
// the auction settles at the highest bid; without bids it is cancelled and
// custody returns to the seller.
func (l *Ledger) CloseAuction(ctx context.Context, auctionID domain.AuctionID, caller domain.Account) error {
	ctx, span := l.tracer.Start(ctx, "ledger.CloseAuction",
		trace.WithAttributes(attribute.Int64("auction.id", int64(auctionID))))
	defer span.End()

	if err := domain.ValidateAccount(caller); err != nil {
		return err
	}

	unlock := l.locks.lock(auctionID)
	defer unlock()

	auction, err := l.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := auction.CloseableBy(caller); err != nil {
		return err
	}

	if !auction.HasBids() {
		if err := l.stores.Auctions.CancelAuction(ctx, auctionID, l.clock().UTC()); err != nil {
			return err
		}
		l.publish(ctx, event.Event{
			Type:      event.TypeAuctionCancelled,
			AuctionID: int64(auctionID),
			AssetID:   int64(auction.AssetID),
			Account:   string(auction.Seller),
		})
		return nil
	}

	if err := l.stores.Auctions.SettleAuction(ctx, auctionID, auction.HighestBidder, auction.HighestBid, l.clock().UTC()); err != nil {
		return err
	}
	l.publish(ctx, event.Event{
		Type:      event.TypeAuctionSettled,
		AuctionID: int64(auctionID),
		AssetID:   int64(auction.AssetID),
		Account:   string(auction.HighestBidder),
		Amount:    auction.HighestBid,
	})
	return nil
}
