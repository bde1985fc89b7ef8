package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/money"
)

func amount(t *testing.T, raw string) money.CheckedDecimal {
	t.Helper()
	v, err := money.Parse(raw)
	require.NoError(t, err)
	return v
}

func TestRecord(t *testing.T) {
	l := NewDepositLedger()

	err := l.Record(Entry{TxID: 1001, ClientID: 1, Amount: amount(t, "100.00")})
	require.NoError(t, err)
	assert.True(t, l.Contains(1001))

	t.Run("duplicate tx id", func(t *testing.T) {
		err := l.Record(Entry{TxID: 1001, ClientID: 2, Amount: amount(t, "5.00")})
		assert.ErrorIs(t, err, ErrDuplicateTransaction)
	})
}

func TestLookup(t *testing.T) {
	l := NewDepositLedger()
	require.NoError(t, l.Record(Entry{TxID: 7, ClientID: 3, Amount: amount(t, "42.00")}))

	entry, err := l.Lookup(7)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), entry.ClientID)
	assert.Equal(t, StatusNotDisputed, entry.Status)
	assert.Equal(t, 0, entry.Amount.Cmp(amount(t, "42.00")))

	t.Run("unknown tx id", func(t *testing.T) {
		_, err := l.Lookup(8)
		assert.ErrorIs(t, err, ErrUnknownTransaction)
	})

	t.Run("returned copy does not alias the index", func(t *testing.T) {
		entry, err := l.Lookup(7)
		require.NoError(t, err)
		entry.Status = StatusChargedBack

		stored, err := l.Lookup(7)
		require.NoError(t, err)
		assert.Equal(t, StatusNotDisputed, stored.Status)
	})
}

func TestDisputeTransitions(t *testing.T) {
	l := NewDepositLedger()
	require.NoError(t, l.Record(Entry{TxID: 1, ClientID: 1, Amount: amount(t, "10.00")}))

	t.Run("dispute then resolve reopens", func(t *testing.T) {
		require.NoError(t, l.MarkDisputed(1))
		assert.ErrorIs(t, l.MarkDisputed(1), ErrAlreadyDisputed)

		require.NoError(t, l.MarkResolved(1))
		assert.ErrorIs(t, l.MarkResolved(1), ErrNotDisputed)

		// the same deposit may be disputed again after a resolve
		require.NoError(t, l.MarkDisputed(1))
		require.NoError(t, l.MarkResolved(1))
	})

	t.Run("chargeback is terminal", func(t *testing.T) {
		require.NoError(t, l.MarkChargedBack(1))
		assert.ErrorIs(t, l.MarkDisputed(1), ErrChargedBack)
		assert.ErrorIs(t, l.MarkResolved(1), ErrChargedBack)
		assert.ErrorIs(t, l.MarkChargedBack(1), ErrChargedBack)
	})

	t.Run("transitions on unknown tx", func(t *testing.T) {
		assert.ErrorIs(t, l.MarkDisputed(99), ErrUnknownTransaction)
		assert.ErrorIs(t, l.MarkResolved(99), ErrUnknownTransaction)
		assert.ErrorIs(t, l.MarkChargedBack(99), ErrUnknownTransaction)
	})
}

func TestChargebackWithoutDispute(t *testing.T) {
	l := NewDepositLedger()
	require.NoError(t, l.Record(Entry{TxID: 2, ClientID: 1, Amount: amount(t, "10.00")}))

	// valid straight from the undisputed state
	require.NoError(t, l.MarkChargedBack(2))

	entry, err := l.Lookup(2)
	require.NoError(t, err)
	assert.Equal(t, StatusChargedBack, entry.Status)
}
