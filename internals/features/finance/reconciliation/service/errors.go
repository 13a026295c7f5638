package service

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrEntryNotFound: no ledger entry under that id.
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrEntryNotCancellable: the entry exists but is not validated.
	ErrEntryNotCancellable = errors.New("ledger entry is not validated")

	// errConcurrentDuplicate is an internal signal: this delivery lost a
	// race (intention already confirmed, or the unique ledger index
	// fired). The transaction is rolled back and the delivery is
	// acknowledged as a duplicate.
	errConcurrentDuplicate = errors.New("confirmation already being processed")
)

// isUniqueViolation recognizes a unique-index violation from Postgres
// (SQLSTATE 23505) with a string fallback for other drivers (the test
// suite runs on sqlite).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
