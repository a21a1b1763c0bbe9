package service

import (
	"sync"

	"github.com/gavelhq/gavel/internal/ledger/domain"
)

// auctionLocks serializes the validate-then-mutate sequence per auction so
// bid comparisons and terminal transitions stay race-free under concurrent
// callers.
type auctionLocks struct {
	mu    sync.Mutex
	locks map[domain.AuctionID]*sync.Mutex
}

func newAuctionLocks() *auctionLocks {
	return &auctionLocks{locks: make(map[domain.AuctionID]*sync.Mutex)}
}

// lock acquires the per-auction mutex and returns its unlock function.
func (a *auctionLocks) lock(id domain.AuctionID) func() {
	a.mu.Lock()
	lock, ok := a.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[id] = lock
	}
	a.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
