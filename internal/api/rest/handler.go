// Package rest exposes the auction ledger over an HTTP/JSON API.
package rest

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gavelhq/gavel/internal/ledger/domain"
	"github.com/gavelhq/gavel/internal/ledger/service"
	apperr "github.com/gavelhq/gavel/internal/platform/errors"
)

// AccountHeader carries the caller identity on every request that acts on
// behalf of an account.
const AccountHeader = "X-Gavel-Account"

// Handler routes HTTP requests to ledger operations.
type Handler struct {
	ledger *service.Ledger
}

// NewHandler builds the HTTP handler for the ledger API.
func NewHandler(ledger *service.Ledger) http.Handler {
	h := &Handler{ledger: ledger}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/rights/{account}/grant", h.grantSaleRight).Methods(http.MethodPost)
	v1.HandleFunc("/rights/{account}", h.getSaleRight).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{account}/deposits", h.deposit).Methods(http.MethodPost)
	v1.HandleFunc("/accounts/{account}/balance", h.getBalance).Methods(http.MethodGet)
	v1.HandleFunc("/auctions", h.createAuction).Methods(http.MethodPost)
	v1.HandleFunc("/auctions/{id}", h.getAuction).Methods(http.MethodGet)
	v1.HandleFunc("/auctions/{id}/bids", h.placeBid).Methods(http.MethodPost)
	v1.HandleFunc("/auctions/{id}/buy", h.buyNow).Methods(http.MethodPost)
	v1.HandleFunc("/auctions/{id}/close", h.closeAuction).Methods(http.MethodPost)
	v1.HandleFunc("/assets/{id}/custodian", h.getCustodian).Methods(http.MethodGet)
	return router
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type createAuctionRequest struct {
	MetadataURI string `json:"metadata_uri"`
	MinPrice    int64  `json:"min_price"`
	BuyPrice    int64  `json:"buy_price"`
}

type rightResponse struct {
	Account   string `json:"account"`
	SaleRight bool   `json:"sale_right"`
}

type balanceResponse struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}

type custodianResponse struct {
	AssetID   int64  `json:"asset_id"`
	Custodian string `json:"custodian"`
	Escrowed  bool   `json:"escrowed"`
}

type auctionResponse struct {
	ID            int64  `json:"id"`
	AssetID       int64  `json:"asset_id"`
	Seller        string `json:"seller"`
	MinPrice      int64  `json:"min_price"`
	BuyPrice      int64  `json:"buy_price,omitempty"`
	HighestBid    int64  `json:"highest_bid,omitempty"`
	HighestBidder string `json:"highest_bidder,omitempty"`
	Status        string `json:"status"`
	Winner        string `json:"winner,omitempty"`
	FinalPrice    int64  `json:"final_price,omitempty"`
}

type errorResponse struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func newAuctionResponse(auction domain.Auction) auctionResponse {
	return auctionResponse{
		ID:            int64(auction.ID),
		AssetID:       int64(auction.AssetID),
		Seller:        string(auction.Seller),
		MinPrice:      auction.MinPrice,
		BuyPrice:      auction.BuyPrice,
		HighestBid:    auction.HighestBid,
		HighestBidder: string(auction.HighestBidder),
		Status:        auction.Status.String(),
		Winner:        string(auction.Winner),
		FinalPrice:    auction.FinalPrice,
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ledger.EscrowedAssetCount(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) grantSaleRight(w http.ResponseWriter, r *http.Request) {
	caller, err := callerAccount(r)
	if err != nil {
		writeError(w, err)
		return
	}
	target := domain.Account(mux.Vars(r)["account"])
	if err := h.ledger.GrantSaleRight(r.Context(), caller, target); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rightResponse{Account: string(target), SaleRight: true})
}

func (h *Handler) getSaleRight(w http.ResponseWriter, r *http.Request) {
	account := domain.Account(mux.Vars(r)["account"])
	right, err := h.ledger.HasSaleRight(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rightResponse{Account: string(account), SaleRight: right})
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	account := domain.Account(mux.Vars(r)["account"])
	balance, err := h.ledger.Deposit(r.Context(), account, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Account: string(account), Balance: balance})
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	account := domain.Account(mux.Vars(r)["account"])
	balance, err := h.ledger.Balance(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Account: string(account), Balance: balance})
}

func (h *Handler) createAuction(w http.ResponseWriter, r *http.Request) {
	caller, err := callerAccount(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createAuctionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	_, auction, err := h.ledger.CreateAuction(r.Context(), caller, req.MetadataURI, req.MinPrice, req.BuyPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAuctionResponse(auction))
}

func (h *Handler) getAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	auction, err := h.ledger.GetAuction(r.Context(), domain.AuctionID(auctionID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuctionResponse(auction))
}

func (h *Handler) placeBid(w http.ResponseWriter, r *http.Request) {
	caller, err := callerAccount(r)
	if err != nil {
		writeError(w, err)
		return
	}
	auctionID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.ledger.PlaceBid(r.Context(), domain.AuctionID(auctionID), caller, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	auction, err := h.ledger.GetAuction(r.Context(), domain.AuctionID(auctionID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuctionResponse(auction))
}

func (h *Handler) buyNow(w http.ResponseWriter, r *http.Request) {
	caller, err := callerAccount(r)
	if err != nil {
		writeError(w, err)
		return
	}
	auctionID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.ledger.BuyNow(r.Context(), domain.AuctionID(auctionID), caller, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	auction, err := h.ledger.GetAuction(r.Context(), domain.AuctionID(auctionID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuctionResponse(auction))
}

func (h *Handler) closeAuction(w http.ResponseWriter, r *http.Request) {
	caller, err := callerAccount(r)
	if err != nil {
		writeError(w, err)
		return
	}
	auctionID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.ledger.CloseAuction(r.Context(), domain.AuctionID(auctionID), caller); err != nil {
		writeError(w, err)
		return
	}
	auction, err := h.ledger.GetAuction(r.Context(), domain.AuctionID(auctionID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuctionResponse(auction))
}

func (h *Handler) getCustodian(w http.ResponseWriter, r *http.Request) {
	assetID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	custodian, err := h.ledger.CustodianOf(r.Context(), domain.AssetID(assetID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, custodianResponse{
		AssetID:   assetID,
		Custodian: string(custodian),
		Escrowed:  custodian == domain.LedgerCustodian,
	})
}

// callerAccount extracts the acting account from the request header.
func callerAccount(r *http.Request) (domain.Account, error) {
	account := domain.Account(r.Header.Get(AccountHeader))
	if account == "" {
		return "", apperr.New(apperr.CodeInvalidAccount, "missing "+AccountHeader+" header")
	}
	return account, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeInvalidAmount, "identifier must be a number", err)
	}
	return id, nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.CodeInvalidAmount, "request body must be valid JSON", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := apperr.GetCode(err)
	message := err.Error()
	if code == apperr.CodeUnknown {
		message = "internal error"
		log.Printf("internal error: %v", err)
	}
	writeJSON(w, code.HTTPStatus(), errorResponse{
		Code:     string(code),
		Message:  message,
		Metadata: apperr.GetMetadata(err),
	})
}
