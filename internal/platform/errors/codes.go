// Package errors provides structured error handling for the auction ledger.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Rights and authorization errors
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Auction term errors
	CodeInvalidTerms Code = "INVALID_TERMS"

	// Identifier errors
	CodeUnknownAsset   Code = "UNKNOWN_ASSET"
	CodeUnknownAuction Code = "UNKNOWN_AUCTION"
	CodeUnknownAccount Code = "UNKNOWN_ACCOUNT"
	CodeInvalidAccount Code = "INVALID_ACCOUNT"

	// Auction state machine errors
	CodeAuctionNotActive Code = "AUCTION_NOT_ACTIVE"
	CodeBidTooLow        Code = "BID_TOO_LOW"

	// Value transfer errors
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeInvalidAmount     Code = "INVALID_AMOUNT"
	CodeSettlementFailed  Code = "SETTLEMENT_FAILED"

	// CodeInvalidCustodyTransition marks an internal custody invariant breach.
	// It should be unreachable; observing it indicates a ledger bug.
	CodeInvalidCustodyTransition Code = "INVALID_CUSTODY_TRANSITION"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeInvalidTerms,
		CodeInvalidAccount,
		CodeInvalidAmount,
		CodeBidTooLow:
		return http.StatusBadRequest
	case CodeUnknownAsset,
		CodeUnknownAuction,
		CodeUnknownAccount:
		return http.StatusNotFound
	case CodeAuctionNotActive:
		return http.StatusConflict
	case CodeInsufficientFunds,
		CodeSettlementFailed:
		return http.StatusPaymentRequired
	case CodeInvalidCustodyTransition:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
