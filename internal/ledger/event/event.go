// Package event defines auction lifecycle events and their publication contract.
package event

import (
	"context"
	"time"
)

// Type names an auction lifecycle transition.
type Type string

const (
	// TypeAuctionCreated fires when an asset is minted into escrow and its
	// auction opens.
	TypeAuctionCreated Type = "auction.created"
	// TypeBidPlaced fires when a bid is accepted as the new highest bid.
	TypeBidPlaced Type = "auction.bid"
	// TypeAuctionSettled fires when an auction settles with a winner.
	TypeAuctionSettled Type = "auction.settled"
	// TypeAuctionCancelled fires when an auction closes without bids.
	TypeAuctionCancelled Type = "auction.cancelled"
)

// Event describes one auction lifecycle transition.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	AuctionID  int64     `json:"auction_id"`
	AssetID    int64     `json:"asset_id"`
	Account    string    `json:"account,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers lifecycle events to an external sink. Publication is a
// side effect only; ledger operations never fail because a publish failed.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
