package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gavelhq/gavel/internal/ledger/domain"
	"github.com/gavelhq/gavel/internal/ledger/storage"
)

// GetAsset returns one minted asset, or storage.ErrNotFound.
func (s *Store) GetAsset(ctx context.Context, id domain.AssetID) (domain.Asset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Asset{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Asset{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, metadata_uri, custodian, created_at FROM assets WHERE id = ?`,
		int64(id),
	)
	return scanAsset(row)
}

// EscrowedAssetCount returns the number of assets held by the ledger.
func (s *Store) EscrowedAssetCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}

	var count int64
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM assets WHERE custodian = ?`,
		string(domain.LedgerCustodian),
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count escrowed assets: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (domain.Asset, error) {
	var asset domain.Asset
	var custodian string
	var createdAt int64
	err := row.Scan(&asset.ID, &asset.MetadataURI, &custodian, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Asset{}, storage.ErrNotFound
		}
		return domain.Asset{}, fmt.Errorf("scan asset: %w", err)
	}
	asset.Custodian = domain.Account(custodian)
	asset.CreatedAt = fromMillis(createdAt)
	return asset, nil
}
