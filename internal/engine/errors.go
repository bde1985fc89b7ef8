package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountLocked is returned for every transaction against a locked account.
	ErrAccountLocked = errors.New("account is locked")
	// ErrInsufficientFunds is returned when available funds cannot cover a
	// withdrawal or a dispute.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAccountMismatch is returned when a dispute, resolve or chargeback
	// names a different client than the deposit it references.
	ErrAccountMismatch = errors.New("client does not own referenced transaction")
)

// Rejection reports why one transaction was not applied. It wraps the kind
// sentinel (matchable with errors.Is) and carries the identifiers an external
// logger needs for verbose reporting.
type Rejection struct {
	Reason   error
	ClientID uint16
	TxID     uint32
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("transaction rejected (client %d, tx %d): %v", r.ClientID, r.TxID, r.Reason)
}

func (r *Rejection) Unwrap() error {
	return r.Reason
}
