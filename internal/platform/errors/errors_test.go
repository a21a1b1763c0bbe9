package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeBidTooLow, "bid 5 is not above 5")
	if !errors.Is(err, New(CodeBidTooLow, "")) {
		t.Fatal("expected errors.Is match by code")
	}
	if errors.Is(err, New(CodeUnauthorized, "")) {
		t.Fatal("expected code mismatch")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("db locked")
	err := Wrap(CodeSettlementFailed, "settle auction 3", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if got := GetCode(err); got != CodeSettlementFailed {
		t.Fatalf("code = %s, want %s", got, CodeSettlementFailed)
	}
}

func TestGetCodeOnForeignError(t *testing.T) {
	if got := GetCode(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("code = %s, want %s", got, CodeUnknown)
	}
	if got := GetCode(nil); got != CodeUnknown {
		t.Fatalf("code = %s, want %s", got, CodeUnknown)
	}
}

func TestGetCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(CodeAuctionNotActive, "auction 9 is settled"))
	if !IsCode(err, CodeAuctionNotActive) {
		t.Fatal("expected code through fmt wrapping")
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	err := WithMetadata(CodeBidTooLow, "too low", map[string]string{"auction_id": "4"})
	meta := GetMetadata(err)
	if meta["auction_id"] != "4" {
		t.Fatalf("metadata auction_id = %q, want 4", meta["auction_id"])
	}
	if GetMetadata(fmt.Errorf("plain")) != nil {
		t.Fatal("expected nil metadata on foreign error")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeUnauthorized, http.StatusForbidden},
		{CodeInvalidTerms, http.StatusBadRequest},
		{CodeBidTooLow, http.StatusBadRequest},
		{CodeUnknownAsset, http.StatusNotFound},
		{CodeUnknownAuction, http.StatusNotFound},
		{CodeAuctionNotActive, http.StatusConflict},
		{CodeInsufficientFunds, http.StatusPaymentRequired},
		{CodeSettlementFailed, http.StatusPaymentRequired},
		{CodeInvalidCustodyTransition, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("%s status = %d, want %d", tc.code, got, tc.want)
		}
	}
}
