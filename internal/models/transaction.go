package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/money"
)

// ErrValidation is the kind for every malformed or semantically invalid input
// record. Validation failures are caught before a record reaches the engine.
var ErrValidation = errors.New("invalid transaction record")

// Kind tags the closed set of transaction variants.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// RawRecord is one input row as produced by the reader, before validation.
// Amount is empty for the kinds that carry no amount.
type RawRecord struct {
	Type   string
	Client string
	Tx     string
	Amount string
}

// Transaction is the validated, typed form of one input record. It is built
// once by ParseRecord, never mutated, and consumed exactly once by the engine.
// Amount is meaningful only for deposits and withdrawals.
type Transaction struct {
	Kind     Kind
	ClientID uint16
	TxID     uint32
	Amount   money.CheckedDecimal
}

// HasAmount reports whether this transaction kind carries an amount.
func (k Kind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// ParseRecord validates a raw row and produces a Transaction. It is pure: it
// never touches the ledger or the account store. Deposits and withdrawals
// require a strictly positive amount; dispute, resolve and chargeback carry
// none (a populated amount column is tolerated and ignored for those kinds).
func ParseRecord(raw RawRecord) (Transaction, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw.Type)))
	switch kind {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
	default:
		return Transaction{}, fmt.Errorf("%w: unknown type %q", ErrValidation, raw.Type)
	}

	client, err := strconv.ParseUint(strings.TrimSpace(raw.Client), 10, 16)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: client id %q", ErrValidation, raw.Client)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(raw.Tx), 10, 32)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: tx id %q", ErrValidation, raw.Tx)
	}

	record := Transaction{
		Kind:     kind,
		ClientID: uint16(client),
		TxID:     uint32(tx),
	}

	if kind.HasAmount() {
		trimmed := strings.TrimSpace(raw.Amount)
		if trimmed == "" {
			return Transaction{}, fmt.Errorf("%w: amount is required for %s", ErrValidation, kind)
		}
		amount, err := money.Parse(trimmed)
		if err != nil {
			return Transaction{}, fmt.Errorf("%w: amount %q", ErrValidation, raw.Amount)
		}
		if !amount.IsPositive() {
			return Transaction{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
		}
		record.Amount = amount
	}

	return record, nil
}
