package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gavelhq/gavel/internal/ledger/domain"
)

// GrantSaleRight marks an account as an authorized seller. Redundant grants
// succeed without changing the grant timestamp.
func (s *Store) GrantSaleRight(ctx context.Context, account domain.Account, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := domain.ValidateAccount(account); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO accounts (address, balance, sale_right, created_at, updated_at)
		 VALUES (?, 0, 1, ?, ?)
		 ON CONFLICT(address) DO UPDATE SET
		   sale_right = 1,
		   updated_at = CASE WHEN accounts.sale_right = 0 THEN excluded.updated_at ELSE accounts.updated_at END`,
		string(account),
		toMillis(at),
		toMillis(at),
	)
	if err != nil {
		return fmt.Errorf("grant sale right: %w", err)
	}
	return nil
}

// HasSaleRight reports whether an account may create auctions.
func (s *Store) HasSaleRight(ctx context.Context, account domain.Account) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := s.ready(); err != nil {
		return false, err
	}
	if err := domain.ValidateAccount(account); err != nil {
		return false, err
	}

	var right int
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT sale_right FROM accounts WHERE address = ?`,
		string(account),
	)
	if err := row.Scan(&right); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("has sale right: %w", err)
	}
	return right != 0, nil
}

// Deposit adds funds to an account and returns the new balance.
func (s *Store) Deposit(ctx context.Context, account domain.Account, amount int64, at time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	if err := domain.ValidateAccount(account); err != nil {
		return 0, err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return 0, err
	}

	var balance int64
	row := s.sqlDB.QueryRowContext(
		ctx,
		`INSERT INTO accounts (address, balance, sale_right, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?)
		 ON CONFLICT(address) DO UPDATE SET
		   balance = accounts.balance + excluded.balance,
		   updated_at = excluded.updated_at
		 RETURNING balance`,
		string(account),
		amount,
		toMillis(at),
		toMillis(at),
	)
	if err := row.Scan(&balance); err != nil {
		return 0, fmt.Errorf("deposit: %w", err)
	}
	return balance, nil
}

// Balance returns the current balance. Unknown accounts hold zero.
func (s *Store) Balance(ctx context.Context, account domain.Account) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	if err := domain.ValidateAccount(account); err != nil {
		return 0, err
	}

	var balance int64
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT balance FROM accounts WHERE address = ?`,
		string(account),
	)
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}
