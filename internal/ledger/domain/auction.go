package domain

import (
	"fmt"
	"time"

	apperr "github.com/gavelhq/gavel/internal/platform/errors"
)

// AuctionID identifies an auction record.
type AuctionID int64

// AuctionStatus describes the lifecycle state of an auction.
type AuctionStatus int

const (
	// StatusUnspecified represents an invalid auction status value.
	StatusUnspecified AuctionStatus = iota
	// StatusActive accepts bids and buy-now offers.
	StatusActive
	// StatusSettled is terminal: the auction closed with a winner.
	StatusSettled
	// StatusCancelled is terminal: the auction closed without bids.
	StatusCancelled
)

// String returns the storage and API representation of the status.
func (s AuctionStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSettled:
		return "settled"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unspecified"
	}
}

// ParseAuctionStatus maps a storage representation back to a status.
func ParseAuctionStatus(value string) (AuctionStatus, error) {
	switch value {
	case "active":
		return StatusActive, nil
	case "settled":
		return StatusSettled, nil
	case "cancelled":
		return StatusCancelled, nil
	default:
		return StatusUnspecified, fmt.Errorf("unknown auction status %q", value)
	}
}

// Terminal reports whether the status permits no further transitions.
func (s AuctionStatus) Terminal() bool {
	return s == StatusSettled || s == StatusCancelled
}

// Auction holds the terms and bid state for one escrowed asset.
//
// Records are never deleted; settled and cancelled auctions remain as
// historical records.
type Auction struct {
	ID            AuctionID
	AssetID       AssetID
	Seller        Account
	MinPrice      int64
	BuyPrice      int64 // zero means no buy-now option
	HighestBid    int64
	HighestBidder Account
	Status        AuctionStatus
	Winner        Account
	FinalPrice    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateTerms checks auction price terms at creation time.
// A buy-now price of zero disables the buy-now option; a non-zero buy-now
// price must be at least the minimum price.
func ValidateTerms(minPrice, buyPrice int64) error {
	if minPrice <= 0 {
		return apperr.New(apperr.CodeInvalidTerms, "minimum price must be greater than zero")
	}
	if buyPrice < 0 {
		return apperr.New(apperr.CodeInvalidTerms, "buy-now price must not be negative")
	}
	if buyPrice != 0 && buyPrice < minPrice {
		return apperr.New(apperr.CodeInvalidTerms, "buy-now price must be at least the minimum price")
	}
	return nil
}

// AcceptsBid checks whether a bid is legal against the current auction state.
// Equal bids are rejected: acceptance requires a strictly greater amount, so
// accepted bids form a total order.
func (a Auction) AcceptsBid(bidder Account, amount int64) error {
	if err := ValidateAccount(bidder); err != nil {
		return err
	}
	if a.Status != StatusActive {
		return apperr.WithMetadata(apperr.CodeAuctionNotActive,
			fmt.Sprintf("auction %d is %s", a.ID, a.Status),
			map[string]string{"status": a.Status.String()})
	}
	if amount < a.MinPrice {
		return apperr.WithMetadata(apperr.CodeBidTooLow,
			fmt.Sprintf("bid %d is below the minimum price %d", amount, a.MinPrice),
			map[string]string{"min_price": fmt.Sprintf("%d", a.MinPrice)})
	}
	if amount <= a.HighestBid {
		return apperr.WithMetadata(apperr.CodeBidTooLow,
			fmt.Sprintf("bid %d is not above the highest bid %d", amount, a.HighestBid),
			map[string]string{"highest_bid": fmt.Sprintf("%d", a.HighestBid)})
	}
	return nil
}

// AcceptsBuyNow checks whether a buy-now offer is legal against the current
// auction state. The attached amount must meet the buy-now price.
func (a Auction) AcceptsBuyNow(buyer Account, amount int64) error {
	if err := ValidateAccount(buyer); err != nil {
		return err
	}
	if a.Status != StatusActive {
		return apperr.WithMetadata(apperr.CodeAuctionNotActive,
			fmt.Sprintf("auction %d is %s", a.ID, a.Status),
			map[string]string{"status": a.Status.String()})
	}
	if a.BuyPrice == 0 {
		return apperr.New(apperr.CodeInvalidTerms, "auction has no buy-now price")
	}
	if amount < a.BuyPrice {
		return apperr.WithMetadata(apperr.CodeInsufficientFunds,
			fmt.Sprintf("attached amount %d is below the buy-now price %d", amount, a.BuyPrice),
			map[string]string{"buy_price": fmt.Sprintf("%d", a.BuyPrice)})
	}
	return nil
}

// CloseableBy checks whether caller may close the auction. Only the seller
// may close, and only while the auction is active.
func (a Auction) CloseableBy(caller Account) error {
	if a.Status != StatusActive {
		return apperr.WithMetadata(apperr.CodeAuctionNotActive,
			fmt.Sprintf("auction %d is %s", a.ID, a.Status),
			map[string]string{"status": a.Status.String()})
	}
	if caller != a.Seller {
		return apperr.New(apperr.CodeUnauthorized, "only the seller may close the auction")
	}
	return nil
}

// HasBids reports whether any bid has been accepted.
func (a Auction) HasBids() bool {
	return a.HighestBidder != ""
}
