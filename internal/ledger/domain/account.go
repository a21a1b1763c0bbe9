package domain

import (
	"strings"

	apperr "github.com/gavelhq/gavel/internal/platform/errors"
)

// Account is an opaque authenticated identity supplied by the host environment.
type Account string

// LedgerCustodian is the reserved custodian identity for assets held in escrow.
// Account names starting with '@' are rejected so the sentinel cannot collide
// with a caller identity.
const LedgerCustodian Account = "@ledger"

// ValidateAccount checks that an account identity is usable as a caller,
// custodian target, or value transfer party.
func ValidateAccount(account Account) error {
	value := string(account)
	if strings.TrimSpace(value) == "" {
		return apperr.New(apperr.CodeInvalidAccount, "account is required")
	}
	if value != strings.TrimSpace(value) {
		return apperr.New(apperr.CodeInvalidAccount, "account must not contain surrounding whitespace")
	}
	if strings.HasPrefix(value, "@") {
		return apperr.New(apperr.CodeInvalidAccount, "account must not use a reserved prefix")
	}
	return nil
}

// ValidateAmount checks that an attached value amount is strictly positive.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return apperr.New(apperr.CodeInvalidAmount, "amount must be greater than zero")
	}
	return nil
}
