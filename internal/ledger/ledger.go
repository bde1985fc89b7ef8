package ledger

import (
	"errors"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/money"
)

var (
	// ErrDuplicateTransaction is returned when a deposit reuses a tx id.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
	// ErrUnknownTransaction is returned when a referenced deposit does not exist.
	ErrUnknownTransaction = errors.New("unknown transaction id")
	// ErrAlreadyDisputed is returned when a deposit already has an open dispute.
	ErrAlreadyDisputed = errors.New("dispute already open")
	// ErrNotDisputed is returned when a resolve references a deposit with no open dispute.
	ErrNotDisputed = errors.New("no open dispute")
	// ErrChargedBack is returned for any flag transition on a charged-back entry.
	// A chargeback is terminal: the entry admits no further disputes.
	ErrChargedBack = errors.New("transaction already charged back")
)

// DisputeStatus tracks where a deposit sits in the dispute protocol.
type DisputeStatus int

const (
	StatusNotDisputed DisputeStatus = iota
	StatusDisputed
	StatusChargedBack
)

// Entry is one accepted deposit. Entries are never deleted; a charged-back
// entry stays in the index in its terminal state.
type Entry struct {
	TxID     uint32
	ClientID uint16
	Amount   money.CheckedDecimal
	Status   DisputeStatus
}

// DepositLedger is an append-only index of accepted deposits keyed by tx id.
// It resolves dispute, resolve and chargeback references. The engine owns it
// exclusively for the duration of a run, so no locking is needed.
type DepositLedger struct {
	entries map[uint32]*Entry
}

// NewDepositLedger creates an empty ledger.
func NewDepositLedger() *DepositLedger {
	return &DepositLedger{
		entries: make(map[uint32]*Entry),
	}
}

// Contains reports whether a tx id is already indexed.
func (l *DepositLedger) Contains(txID uint32) bool {
	_, ok := l.entries[txID]
	return ok
}

// Record inserts a new deposit entry, failing if the tx id is already present.
func (l *DepositLedger) Record(entry Entry) error {
	if _, ok := l.entries[entry.TxID]; ok {
		return ErrDuplicateTransaction
	}
	entry.Status = StatusNotDisputed
	l.entries[entry.TxID] = &entry
	return nil
}

// Lookup returns a copy of the entry for txID. Flag transitions go through
// the Mark methods, never through the returned copy.
func (l *DepositLedger) Lookup(txID uint32) (Entry, error) {
	entry, ok := l.entries[txID]
	if !ok {
		return Entry{}, ErrUnknownTransaction
	}
	return *entry, nil
}

// MarkDisputed opens a dispute on a deposit. At most one dispute may be open
// per deposit at a time.
func (l *DepositLedger) MarkDisputed(txID uint32) error {
	entry, ok := l.entries[txID]
	if !ok {
		return ErrUnknownTransaction
	}
	switch entry.Status {
	case StatusDisputed:
		return ErrAlreadyDisputed
	case StatusChargedBack:
		return ErrChargedBack
	}
	entry.Status = StatusDisputed
	return nil
}

// MarkResolved closes an open dispute, returning the entry to its undisputed
// state so it may be disputed again later.
func (l *DepositLedger) MarkResolved(txID uint32) error {
	entry, ok := l.entries[txID]
	if !ok {
		return ErrUnknownTransaction
	}
	switch entry.Status {
	case StatusNotDisputed:
		return ErrNotDisputed
	case StatusChargedBack:
		return ErrChargedBack
	}
	entry.Status = StatusNotDisputed
	return nil
}

// MarkChargedBack finalizes an entry. The transition is valid from either the
// disputed or the undisputed state, and is terminal.
func (l *DepositLedger) MarkChargedBack(txID uint32) error {
	entry, ok := l.entries[txID]
	if !ok {
		return ErrUnknownTransaction
	}
	if entry.Status == StatusChargedBack {
		return ErrChargedBack
	}
	entry.Status = StatusChargedBack
	return nil
}
