package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// IsUniqueViolation reports whether err is a postgres unique_violation.
func IsUniqueViolation(err error) bool {
	return ParsePGErrorCode(err) == "23505"
}

// Generic
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrIntegrity  = errors.New("ledger integrity violated")
)

// Accounts
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrUnknownAccountType = errors.New("unknown account type")
	ErrAccountInactive    = errors.New("account is inactive")
)

// Journal entries
var (
	ErrEntryNotFound     = errors.New("journal entry not found")
	ErrUnbalancedEntry   = errors.New("debit amount must equal credit amount")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrSameAccountEntry  = errors.New("debit and credit accounts must differ")
)

// Category ledgers
var (
	ErrLedgerNotFound      = errors.New("category ledger not found")
	ErrUnknownCategoryType = errors.New("unknown category type")
	ErrUnknownEntryType    = errors.New("unknown category entry type")
	ErrSameLedgerTransfer  = errors.New("source and destination ledgers must differ")
)

// Fines
var (
	ErrFineNotFound = errors.New("fine not found")
)

// Withdrawals
var (
	ErrWithdrawalNotFound    = errors.New("withdrawal not found")
	ErrUnknownWithdrawalKind = errors.New("unknown withdrawal kind")
)

// Void / state machine
var (
	ErrAlreadyVoided = errors.New("transaction already voided")
	ErrPostedDelete  = errors.New("posted transactions must be voided, not deleted")
)

// IsValidation reports whether err is a caller input problem
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrUnknownAccountType, ErrUnbalancedEntry,
		ErrNonPositiveAmount, ErrSameAccountEntry, ErrUnknownCategoryType,
		ErrUnknownEntryType, ErrSameLedgerTransfer, ErrUnknownWithdrawalKind,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means a missing resource
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrAccountNotFound, ErrEntryNotFound,
		ErrLedgerNotFound, ErrFineNotFound, ErrWithdrawalNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict reports whether err is a state conflict the caller can retry
// or must reconsider
func IsConflict(err error) bool {
	for _, target := range []error{
		ErrConflict, ErrAlreadyVoided, ErrPostedDelete, ErrAccountInactive,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
