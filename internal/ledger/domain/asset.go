package domain

import "time"

// AssetID identifies a minted asset. Identifiers are assigned monotonically
// at mint time and never reused.
type AssetID int64

// Asset is a uniquely identified token tracked by the registry.
//
// Every asset has exactly one custodian at all times. Custody is held by
// LedgerCustodian if and only if the asset is escrowed for an active auction.
type Asset struct {
	ID          AssetID
	MetadataURI string
	Custodian   Account
	CreatedAt   time.Time
}

// Escrowed reports whether the asset is currently held by the ledger.
func (a Asset) Escrowed() bool {
	return a.Custodian == LedgerCustodian
}
