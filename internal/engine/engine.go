package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/accounts"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/ledger"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/models"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/models/events"
)

// Topic is the event stream engine outcomes are published to.
const Topic = "transaction_events"

// Engine consumes transaction records strictly in arrival order and applies
// exactly one state transition per record. Every handler validates all
// preconditions before mutating the ledger or an account, so a rejected
// transaction leaves no partial state behind.
type Engine struct {
	ledger    *ledger.DepositLedger
	accounts  *accounts.Store
	publisher interfaces.EventPublisher
	logger    *zap.Logger
	runID     string

	accepted int
	rejected int
}

// New creates an engine. A nil publisher or logger disables the corresponding
// reporting path.
func New(publisher interfaces.EventPublisher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		ledger:    ledger.NewDepositLedger(),
		accounts:  accounts.NewStore(),
		publisher: publisher,
		logger:    logger,
		runID:     uuid.New().String(),
	}
}

// RunID identifies this processing run on published events.
func (e *Engine) RunID() string {
	return e.runID
}

// Accepted returns the number of applied transactions so far.
func (e *Engine) Accepted() int {
	return e.accepted
}

// Rejected returns the number of rejected transactions so far.
func (e *Engine) Rejected() int {
	return e.rejected
}

// Snapshots returns the final view of every account, sorted by client id.
func (e *Engine) Snapshots() []models.AccountSnapshot {
	return e.accounts.Snapshots()
}

// Process applies one transaction. A nil return means the transaction was
// accepted; otherwise the returned *Rejection names the reason and the
// offending identifiers. A rejection never aborts the run: the caller simply
// moves on to the next record.
func (e *Engine) Process(tx models.Transaction) error {
	account := e.accounts.GetOrCreate(tx.ClientID)

	var err error
	if account.Locked() {
		// Locked is terminal: nothing is accepted afterwards, chargebacks included.
		err = ErrAccountLocked
	} else {
		switch tx.Kind {
		case models.KindDeposit:
			err = e.deposit(account, tx)
		case models.KindWithdrawal:
			err = e.withdraw(account, tx)
		case models.KindDispute:
			err = e.dispute(account, tx)
		case models.KindResolve:
			err = e.resolve(account, tx)
		case models.KindChargeback:
			err = e.chargeback(account, tx)
		default:
			err = fmt.Errorf("%w: kind %q", models.ErrValidation, tx.Kind)
		}
	}

	if err != nil {
		e.rejected++
		rejection := &Rejection{Reason: err, ClientID: tx.ClientID, TxID: tx.TxID}
		e.publishRejected(tx, err)
		return rejection
	}

	e.accepted++
	return nil
}

func (e *Engine) deposit(account *accounts.Account, tx models.Transaction) error {
	if e.ledger.Contains(tx.TxID) {
		return ledger.ErrDuplicateTransaction
	}

	if err := account.Mutate(func(b *accounts.Balance) error {
		var err error
		b.Available, err = b.Available.Add(tx.Amount)
		return err
	}); err != nil {
		return err
	}

	if err := e.ledger.Record(ledger.Entry{
		TxID:     tx.TxID,
		ClientID: tx.ClientID,
		Amount:   tx.Amount,
	}); err != nil {
		// Cannot happen after the Contains check, but if it ever does the
		// balance change is undone so the account is left untouched.
		rollbackErr := account.Mutate(func(b *accounts.Balance) error {
			var subErr error
			b.Available, subErr = b.Available.Sub(tx.Amount)
			return subErr
		})
		if rollbackErr != nil {
			e.logger.Error("deposit rollback failed",
				zap.Uint16("client", tx.ClientID),
				zap.Uint32("tx", tx.TxID),
				zap.Error(rollbackErr),
			)
		}
		return err
	}

	return nil
}

func (e *Engine) withdraw(account *accounts.Account, tx models.Transaction) error {
	if account.Balance().Available.LessThan(tx.Amount) {
		return ErrInsufficientFunds
	}

	return account.Mutate(func(b *accounts.Balance) error {
		var err error
		b.Available, err = b.Available.Sub(tx.Amount)
		return err
	})
}

func (e *Engine) dispute(account *accounts.Account, tx models.Transaction) error {
	entry, err := e.ledger.Lookup(tx.TxID)
	if err != nil {
		return err
	}
	if entry.ClientID != tx.ClientID {
		return ErrAccountMismatch
	}
	switch entry.Status {
	case ledger.StatusDisputed:
		return ledger.ErrAlreadyDisputed
	case ledger.StatusChargedBack:
		return ledger.ErrChargedBack
	}
	// A dispute may not push available below zero.
	if account.Balance().Available.LessThan(entry.Amount) {
		return ErrInsufficientFunds
	}

	if err := account.Mutate(func(b *accounts.Balance) error {
		var err error
		if b.Available, err = b.Available.Sub(entry.Amount); err != nil {
			return err
		}
		b.Held, err = b.Held.Add(entry.Amount)
		return err
	}); err != nil {
		return err
	}

	return e.ledger.MarkDisputed(tx.TxID)
}

func (e *Engine) resolve(account *accounts.Account, tx models.Transaction) error {
	entry, err := e.ledger.Lookup(tx.TxID)
	if err != nil {
		return err
	}
	if entry.ClientID != tx.ClientID {
		return ErrAccountMismatch
	}
	switch entry.Status {
	case ledger.StatusNotDisputed:
		return ledger.ErrNotDisputed
	case ledger.StatusChargedBack:
		return ledger.ErrChargedBack
	}

	if err := account.Mutate(func(b *accounts.Balance) error {
		var err error
		if b.Held, err = b.Held.Sub(entry.Amount); err != nil {
			return err
		}
		b.Available, err = b.Available.Add(entry.Amount)
		return err
	}); err != nil {
		return err
	}

	return e.ledger.MarkResolved(tx.TxID)
}

func (e *Engine) chargeback(account *accounts.Account, tx models.Transaction) error {
	entry, err := e.ledger.Lookup(tx.TxID)
	if err != nil {
		return err
	}
	if entry.ClientID != tx.ClientID {
		return ErrAccountMismatch
	}
	if entry.Status == ledger.StatusChargedBack {
		return ledger.ErrChargedBack
	}

	if entry.Status == ledger.StatusDisputed {
		// Open dispute: the held funds leave the account for good.
		if err := account.Mutate(func(b *accounts.Balance) error {
			var err error
			b.Held, err = b.Held.Sub(entry.Amount)
			return err
		}); err != nil {
			return err
		}
	}
	// No open dispute: the client charged back without disputing first.
	// Balances stay untouched, the account still locks.

	if err := e.ledger.MarkChargedBack(tx.TxID); err != nil {
		return err
	}
	account.Lock()
	e.publishLocked(tx)
	return nil
}

func (e *Engine) publishRejected(tx models.Transaction, reason error) {
	if e.publisher == nil {
		return
	}
	event := events.TransactionRejected{
		EventID:    uuid.New().String(),
		RunID:      e.runID,
		Type:       string(tx.Kind),
		Reason:     reason.Error(),
		ClientID:   tx.ClientID,
		TxID:       tx.TxID,
		OccurredAt: time.Now().UTC(),
	}
	if err := e.publisher.Publish(Topic, event); err != nil {
		e.logger.Warn("failed to publish rejection event", zap.Error(err))
	}
}

func (e *Engine) publishLocked(tx models.Transaction) {
	if e.publisher == nil {
		return
	}
	event := events.AccountLocked{
		EventID:    uuid.New().String(),
		RunID:      e.runID,
		ClientID:   tx.ClientID,
		TxID:       tx.TxID,
		OccurredAt: time.Now().UTC(),
	}
	if err := e.publisher.Publish(Topic, event); err != nil {
		e.logger.Warn("failed to publish lock event", zap.Error(err))
	}
}
