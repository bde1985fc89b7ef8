package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/ledger"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/models"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/models/events"
	"github.com/sheikh-saqib/transaction-processing-engine/internal/money"
)

type mockPublisher struct {
	PublishFunc func(topic string, event any) error
	published   []any
}

func (m *mockPublisher) Publish(topic string, event any) error {
	m.published = append(m.published, event)
	if m.PublishFunc != nil {
		return m.PublishFunc(topic, event)
	}
	return nil
}

func amount(t *testing.T, raw string) money.CheckedDecimal {
	t.Helper()
	v, err := money.Parse(raw)
	require.NoError(t, err)
	return v
}

func deposit(t *testing.T, client uint16, tx uint32, raw string) models.Transaction {
	return models.Transaction{Kind: models.KindDeposit, ClientID: client, TxID: tx, Amount: amount(t, raw)}
}

func withdrawal(t *testing.T, client uint16, tx uint32, raw string) models.Transaction {
	return models.Transaction{Kind: models.KindWithdrawal, ClientID: client, TxID: tx, Amount: amount(t, raw)}
}

func dispute(client uint16, tx uint32) models.Transaction {
	return models.Transaction{Kind: models.KindDispute, ClientID: client, TxID: tx}
}

func resolve(client uint16, tx uint32) models.Transaction {
	return models.Transaction{Kind: models.KindResolve, ClientID: client, TxID: tx}
}

func chargeback(client uint16, tx uint32) models.Transaction {
	return models.Transaction{Kind: models.KindChargeback, ClientID: client, TxID: tx}
}

func snapshotFor(t *testing.T, e *Engine, client uint16) models.AccountSnapshot {
	t.Helper()
	for _, s := range e.Snapshots() {
		if s.ClientID == client {
			return s
		}
	}
	t.Fatalf("no snapshot for client %d", client)
	return models.AccountSnapshot{}
}

func assertBalance(t *testing.T, e *Engine, client uint16, available, held string, locked bool) {
	t.Helper()
	s := snapshotFor(t, e, client)
	assert.Equal(t, available, s.Available.String(), "available")
	assert.Equal(t, held, s.Held.String(), "held")
	assert.Equal(t, locked, s.Locked, "locked")
	assert.True(t, s.Total.Equal(s.Available.Add(s.Held)), "total must equal available + held")
}

func TestDepositAndWithdrawal(t *testing.T) {
	e := New(nil, nil)
	require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))
	require.NoError(t, e.Process(deposit(t, 1, 2, "5.0")))
	require.NoError(t, e.Process(withdrawal(t, 1, 3, "3.0")))

	assertBalance(t, e, 1, "12", "0", false)
	assert.Equal(t, 3, e.Accepted())
	assert.Equal(t, 0, e.Rejected())
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	e := New(nil, nil)
	err := e.Process(withdrawal(t, 2, 9, "100.0"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	assertBalance(t, e, 2, "0", "0", false)
	assert.Equal(t, 1, e.Rejected())
}

func TestDuplicateDeposit(t *testing.T) {
	e := New(nil, nil)
	require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))

	err := e.Process(deposit(t, 2, 1, "5.0"))
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)

	// the rejected deposit left no trace on either account
	assertBalance(t, e, 1, "10", "0", false)
	assertBalance(t, e, 2, "0", "0", false)
}

func TestDisputeResolveRoundTrip(t *testing.T) {
	e := New(nil, nil)
	require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))
	require.NoError(t, e.Process(deposit(t, 1, 2, "5.0")))
	require.NoError(t, e.Process(withdrawal(t, 1, 3, "3.0")))

	require.NoError(t, e.Process(dispute(1, 1)))
	assertBalance(t, e, 1, "2", "10", false)

	require.NoError(t, e.Process(resolve(1, 1)))
	assertBalance(t, e, 1, "12", "0", false)
}

func TestDisputeRejections(t *testing.T) {
	t.Run("unknown transaction", func(t *testing.T) {
		e := New(nil, nil)
		err := e.Process(dispute(1, 99))
		assert.ErrorIs(t, err, ledger.ErrUnknownTransaction)
	})

	t.Run("account mismatch", func(t *testing.T) {
		e := New(nil, nil)
		require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))

		err := e.Process(dispute(2, 1))
		assert.ErrorIs(t, err, ErrAccountMismatch)
		assertBalance(t, e, 1, "10", "0", false)
	})

	t.Run("already disputed", func(t *testing.T) {
		e := New(nil, nil)
		require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))
		require.NoError(t, e.Process(dispute(1, 1)))

		err := e.Process(dispute(1, 1))
		assert.ErrorIs(t, err, ledger.ErrAlreadyDisputed)
		assertBalance(t, e, 1, "0", "10", false)
	})

	t.Run("insufficient available after withdrawal", func(t *testing.T) {
		e := New(nil, nil)
		require.NoError(t, e.Process(deposit(t, 1, 1, "100.0")))
		require.NoError(t, e.Process(withdrawal(t, 1, 2, "50.0")))

		err := e.Process(dispute(1, 1))
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assertBalance(t, e, 1, "50", "0", false)
	})
}

func TestResolveRejections(t *testing.T) {
	e := New(nil, nil)
	require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))

	t.Run("not disputed", func(t *testing.T) {
		err := e.Process(resolve(1, 1))
		assert.ErrorIs(t, err, ledger.ErrNotDisputed)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		err := e.Process(resolve(1, 99))
		assert.ErrorIs(t, err, ledger.ErrUnknownTransaction)
	})

	t.Run("account mismatch", func(t *testing.T) {
		err := e.Process(resolve(2, 1))
		assert.ErrorIs(t, err, ErrAccountMismatch)
	})
}

func TestChargebackWithOpenDispute(t *testing.T) {
	e := New(nil, nil)
	require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))
	require.NoError(t, e.Process(deposit(t, 1, 2, "5.0")))
	require.NoError(t, e.Process(withdrawal(t, 1, 3, "3.0")))
	require.NoError(t, e.Process(dispute(1, 1)))

	require.NoError(t, e.Process(chargeback(1, 1)))
	assertBalance(t, e, 1, "2", "0", true)

	t.Run("everything after the lock is rejected", func(t *testing.T) {
		assert.ErrorIs(t, e.Process(deposit(t, 1, 4, "1.0")), ErrAccountLocked)
		assert.ErrorIs(t, e.Process(withdrawal(t, 1, 5, "1.0")), ErrAccountLocked)
		assert.ErrorIs(t, e.Process(dispute(1, 2)), ErrAccountLocked)
		assert.ErrorIs(t, e.Process(resolve(1, 2)), ErrAccountLocked)
		assert.ErrorIs(t, e.Process(chargeback(1, 2)), ErrAccountLocked)
		assertBalance(t, e, 1, "2", "0", true)
	})
}

func TestChargebackWithoutDispute(t *testing.T) {
	e := New(nil, nil)
	require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))
	require.NoError(t, e.Process(deposit(t, 1, 2, "5.0")))

	// no dispute was opened: balances stay put, the account still locks
	require.NoError(t, e.Process(chargeback(1, 1)))
	assertBalance(t, e, 1, "15", "0", true)
}

func TestChargebackRejections(t *testing.T) {
	t.Run("unknown transaction does not lock", func(t *testing.T) {
		e := New(nil, nil)
		require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))

		err := e.Process(chargeback(1, 99))
		assert.ErrorIs(t, err, ledger.ErrUnknownTransaction)
		assertBalance(t, e, 1, "10", "0", false)
	})

	t.Run("account mismatch does not lock", func(t *testing.T) {
		e := New(nil, nil)
		require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))

		err := e.Process(chargeback(2, 1))
		assert.ErrorIs(t, err, ErrAccountMismatch)
		assertBalance(t, e, 1, "10", "0", false)
		assertBalance(t, e, 2, "0", "0", false)
	})
}

func TestRejectionCarriesIdentifiers(t *testing.T) {
	e := New(nil, nil)
	err := e.Process(withdrawal(t, 7, 42, "1.0"))

	var rejection *Rejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, uint16(7), rejection.ClientID)
	assert.Equal(t, uint32(42), rejection.TxID)
	assert.ErrorIs(t, rejection, ErrInsufficientFunds)
}

func TestEventsArePublished(t *testing.T) {
	pub := &mockPublisher{}
	e := New(pub, nil)

	require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))
	require.Error(t, e.Process(withdrawal(t, 1, 2, "20.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(chargeback(1, 1)))

	require.Len(t, pub.published, 2)

	rejected, ok := pub.published[0].(events.TransactionRejected)
	require.True(t, ok)
	assert.Equal(t, e.RunID(), rejected.RunID)
	assert.Equal(t, "withdrawal", rejected.Type)
	assert.Equal(t, uint16(1), rejected.ClientID)
	assert.Equal(t, uint32(2), rejected.TxID)
	assert.NotEmpty(t, rejected.Reason)

	locked, ok := pub.published[1].(events.AccountLocked)
	require.True(t, ok)
	assert.Equal(t, uint16(1), locked.ClientID)
	assert.Equal(t, uint32(1), locked.TxID)
}

func TestPublishFailureDoesNotAffectState(t *testing.T) {
	pub := &mockPublisher{
		PublishFunc: func(topic string, event any) error {
			return assert.AnError
		},
	}
	e := New(pub, nil)

	require.NoError(t, e.Process(deposit(t, 1, 1, "10.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(chargeback(1, 1)))

	assertBalance(t, e, 1, "0", "0", true)
}
