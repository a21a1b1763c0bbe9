// Package migrations contains embedded SQLite migrations for ledger storage.
package migrations

import "embed"

// FS contains embedded SQLite migrations for the auction ledger store.
//
//go:embed *.sql
var FS embed.FS
