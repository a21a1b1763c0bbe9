package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gavelhq/gavel/internal/ledger/domain"
	"github.com/gavelhq/gavel/internal/ledger/storage"
	apperr "github.com/gavelhq/gavel/internal/platform/errors"
)

// CreateAuction mints a fresh asset into ledger escrow and opens an active
// auction bound to it. Both inserts commit or neither does.
func (s *Store) CreateAuction(ctx context.Context, input storage.CreateAuctionInput) (domain.Asset, domain.Auction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Asset{}, domain.Auction{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Asset{}, domain.Auction{}, err
	}
	if err := domain.ValidateAccount(input.Seller); err != nil {
		return domain.Asset{}, domain.Auction{}, err
	}
	if err := domain.ValidateTerms(input.MinPrice, input.BuyPrice); err != nil {
		return domain.Asset{}, domain.Auction{}, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Asset{}, domain.Auction{}, fmt.Errorf("begin create auction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	at := toMillis(input.At)
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO assets (metadata_uri, custodian, created_at) VALUES (?, ?, ?)`,
		input.MetadataURI,
		string(domain.LedgerCustodian),
		at,
	)
	if err != nil {
		return domain.Asset{}, domain.Auction{}, fmt.Errorf("mint asset: %w", err)
	}
	assetID, err := res.LastInsertId()
	if err != nil {
		return domain.Asset{}, domain.Auction{}, fmt.Errorf("minted asset id: %w", err)
	}

	res, err = tx.ExecContext(
		ctx,
		`INSERT INTO auctions (asset_id, seller, min_price, buy_price, highest_bid, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, 'active', ?, ?)`,
		assetID,
		string(input.Seller),
		input.MinPrice,
		input.BuyPrice,
		at,
		at,
	)
	if err != nil {
		return domain.Asset{}, domain.Auction{}, fmt.Errorf("open auction: %w", err)
	}
	auctionID, err := res.LastInsertId()
	if err != nil {
		return domain.Asset{}, domain.Auction{}, fmt.Errorf("opened auction id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Asset{}, domain.Auction{}, fmt.Errorf("commit create auction: %w", err)
	}

	asset := domain.Asset{
		ID:          domain.AssetID(assetID),
		MetadataURI: input.MetadataURI,
		Custodian:   domain.LedgerCustodian,
		CreatedAt:   fromMillis(at),
	}
	auction := domain.Auction{
		ID:        domain.AuctionID(auctionID),
		AssetID:   domain.AssetID(assetID),
		Seller:    input.Seller,
		MinPrice:  input.MinPrice,
		BuyPrice:  input.BuyPrice,
		Status:    domain.StatusActive,
		CreatedAt: fromMillis(at),
		UpdatedAt: fromMillis(at),
	}
	return asset, auction, nil
}

// GetAuction returns one auction record, or storage.ErrNotFound.
func (s *Store) GetAuction(ctx context.Context, id domain.AuctionID) (domain.Auction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Auction{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Auction{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, asset_id, seller, min_price, buy_price, highest_bid, highest_bidder,
		        status, winner, final_price, created_at, updated_at
		 FROM auctions WHERE id = ?`,
		int64(id),
	)
	return scanAuction(row)
}

// RecordBid replaces the highest bid with a compare-and-swap on the stored
// highest bid. A zero-row update is diagnosed against the current record so
// callers get the precise violation back.
func (s *Store) RecordBid(ctx context.Context, id domain.AuctionID, bidder domain.Account, amount int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := domain.ValidateAccount(bidder); err != nil {
		return err
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE auctions
		 SET highest_bid = ?, highest_bidder = ?, updated_at = ?
		 WHERE id = ? AND status = 'active' AND highest_bid < ? AND min_price <= ?`,
		amount,
		string(bidder),
		toMillis(at),
		int64(id),
		amount,
		amount,
	)
	if err != nil {
		return fmt.Errorf("record bid: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record bid rows: %w", err)
	}
	if rows == 1 {
		return nil
	}

	auction, err := s.GetAuction(ctx, id)
	if err != nil {
		return err
	}
	return auction.AcceptsBid(bidder, amount)
}

// SettleAuction performs the atomic settlement composite: Active to Settled
// exactly once, winner debited, seller credited, custody released to the
// winner. Any guard failure rolls the whole transaction back.
func (s *Store) SettleAuction(ctx context.Context, id domain.AuctionID, winner domain.Account, price int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := domain.ValidateAccount(winner); err != nil {
		return err
	}
	if err := domain.ValidateAmount(price); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settlement: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var assetID int64
	var seller string
	row := tx.QueryRowContext(ctx, `SELECT asset_id, seller FROM auctions WHERE id = ?`, int64(id))
	if err := row.Scan(&assetID, &seller); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("load auction for settlement: %w", err)
	}

	now := toMillis(at)
	res, err := tx.ExecContext(
		ctx,
		`UPDATE auctions
		 SET status = 'settled', winner = ?, final_price = ?, updated_at = ?
		 WHERE id = ? AND status = 'active'`,
		string(winner),
		price,
		now,
		int64(id),
	)
	if err != nil {
		return fmt.Errorf("settle status transition: %w", err)
	}
	if affected(res) != 1 {
		return apperr.New(apperr.CodeAuctionNotActive,
			fmt.Sprintf("auction %d is not active", id))
	}

	res, err = tx.ExecContext(
		ctx,
		`UPDATE accounts SET balance = balance - ?, updated_at = ?
		 WHERE address = ? AND balance >= ?`,
		price,
		now,
		string(winner),
		price,
	)
	if err != nil {
		return fmt.Errorf("debit winner: %w", err)
	}
	if affected(res) != 1 {
		return apperr.WithMetadata(apperr.CodeSettlementFailed,
			fmt.Sprintf("winner holds less than the final price %d", price),
			map[string]string{"final_price": fmt.Sprintf("%d", price)})
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO accounts (address, balance, sale_right, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?)
		 ON CONFLICT(address) DO UPDATE SET
		   balance = accounts.balance + excluded.balance,
		   updated_at = excluded.updated_at`,
		seller,
		price,
		now,
		now,
	); err != nil {
		return fmt.Errorf("credit seller: %w", err)
	}

	res, err = tx.ExecContext(
		ctx,
		`UPDATE assets SET custodian = ? WHERE id = ? AND custodian = ?`,
		string(winner),
		assetID,
		string(domain.LedgerCustodian),
	)
	if err != nil {
		return fmt.Errorf("release custody: %w", err)
	}
	if affected(res) != 1 {
		return apperr.New(apperr.CodeInvalidCustodyTransition,
			fmt.Sprintf("asset %d is not in ledger escrow", assetID))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settlement: %w", err)
	}
	return nil
}

// CancelAuction transitions Active to Cancelled and returns escrowed custody
// to the seller. No value moves.
func (s *Store) CancelAuction(ctx context.Context, id domain.AuctionID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cancel: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var assetID int64
	var seller string
	row := tx.QueryRowContext(ctx, `SELECT asset_id, seller FROM auctions WHERE id = ?`, int64(id))
	if err := row.Scan(&assetID, &seller); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("load auction for cancel: %w", err)
	}

	res, err := tx.ExecContext(
		ctx,
		`UPDATE auctions SET status = 'cancelled', updated_at = ?
		 WHERE id = ? AND status = 'active'`,
		toMillis(at),
		int64(id),
	)
	if err != nil {
		return fmt.Errorf("cancel status transition: %w", err)
	}
	if affected(res) != 1 {
		return apperr.New(apperr.CodeAuctionNotActive,
			fmt.Sprintf("auction %d is not active", id))
	}

	res, err = tx.ExecContext(
		ctx,
		`UPDATE assets SET custodian = ? WHERE id = ? AND custodian = ?`,
		seller,
		assetID,
		string(domain.LedgerCustodian),
	)
	if err != nil {
		return fmt.Errorf("return custody: %w", err)
	}
	if affected(res) != 1 {
		return apperr.New(apperr.CodeInvalidCustodyTransition,
			fmt.Sprintf("asset %d is not in ledger escrow", assetID))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel: %w", err)
	}
	return nil
}

func affected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return rows
}

func scanAuction(row rowScanner) (domain.Auction, error) {
	var auction domain.Auction
	var seller string
	var highestBidder sql.NullString
	var status string
	var winner sql.NullString
	var finalPrice sql.NullInt64
	var createdAt, updatedAt int64
	err := row.Scan(
		&auction.ID,
		&auction.AssetID,
		&seller,
		&auction.MinPrice,
		&auction.BuyPrice,
		&auction.HighestBid,
		&highestBidder,
		&status,
		&winner,
		&finalPrice,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Auction{}, storage.ErrNotFound
		}
		return domain.Auction{}, fmt.Errorf("scan auction: %w", err)
	}
	auction.Seller = domain.Account(seller)
	if highestBidder.Valid {
		auction.HighestBidder = domain.Account(highestBidder.String)
	}
	parsed, err := domain.ParseAuctionStatus(status)
	if err != nil {
		return domain.Auction{}, err
	}
	auction.Status = parsed
	if winner.Valid {
		auction.Winner = domain.Account(winner.String)
	}
	if finalPrice.Valid {
		auction.FinalPrice = finalPrice.Int64
	}
	auction.CreatedAt = fromMillis(createdAt)
	auction.UpdatedAt = fromMillis(updatedAt)
	return auction, nil
}
