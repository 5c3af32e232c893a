package service

import "sync"

// FundLocks serializes ledger operations per fund. Two concurrent buys
// against the same fund must not both pass the cash check against a stale
// balance, so every read-modify-write acquires the fund's lock for its whole
// duration. Operations on different funds proceed in parallel.
type FundLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFundLocks creates an empty lock registry.
func NewFundLocks() *FundLocks {
	return &FundLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the lock for the named fund, creating it on first use, and
// returns the unlock function. Locks are never removed; the registry grows
// with the number of distinct fund names, which is small.
func (l *FundLocks) Lock(fundName string) func() {
	l.mu.Lock()
	lock, ok := l.locks[fundName]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[fundName] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
