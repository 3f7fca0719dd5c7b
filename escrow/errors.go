package escrow

import (
	"errors"
)

// Validation and lifecycle errors returned by the ledger. Callers match
// them with errors.Is; operations never partially apply on failure.
var (
	ErrZeroAmount              = errors.New("amount is zero")
	ErrZeroAddress             = errors.New("zero address")
	ErrAmountTooLarge          = errors.New("amount too large")
	ErrLockTooShort            = errors.New("lock duration too short")
	ErrLockTooLong             = errors.New("lock duration too long")
	ErrLockNotExtended         = errors.New("lock duration not extended")
	ErrDepositDurationTooShort = errors.New("remaining lock duration too short for deposit")
	ErrNoLock                  = errors.New("no such lock")
	ErrSameLock                = errors.New("source and target are the same lock")
	ErrNotApprovedOrOwner      = errors.New("caller is not owner nor approved")
	ErrNotGovernor             = errors.New("caller is not the governor")
	ErrSplitNotAllowed         = errors.New("split not allowed for owner")
	ErrPermanentLock           = errors.New("lock is permanent")
	ErrNotPermanent            = errors.New("lock is not permanent")
	ErrExpired                 = errors.New("lock is expired")
	ErrNotExpired              = errors.New("lock is not expired")
	ErrReplayHorizonExceeded   = errors.New("query exceeds the schedule replay horizon")
	ErrNotInitialized          = errors.New("store has no genesis")
	ErrGenesisMismatch         = errors.New("genesis does not match the store")
)
