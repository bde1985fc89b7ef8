package accounts

import (
	"github.com/sheikh-saqib/transaction-processing-engine/internal/money"
)

// Balance holds the two funds pools of an account. The total is derived as
// available + held and is recomputed on every commit, never stored on its own.
type Balance struct {
	Available money.CheckedDecimal
	Held      money.CheckedDecimal
}

// Account is the per-client state: balances plus the terminal lock flag.
// All balance changes go through Mutate so that a failed multi-field update
// leaves the account observably unchanged.
type Account struct {
	clientID uint16
	balance  Balance
	total    money.CheckedDecimal
	locked   bool
}

func newAccount(clientID uint16) *Account {
	return &Account{clientID: clientID}
}

// ClientID returns the owning client id.
func (a *Account) ClientID() uint16 {
	return a.clientID
}

// Locked reports whether the account has been locked by a chargeback.
func (a *Account) Locked() bool {
	return a.locked
}

// Lock marks the account locked. There is no unlock: a chargeback is terminal.
func (a *Account) Lock() {
	a.locked = true
}

// Balance returns the current balance.
func (a *Account) Balance() Balance {
	return a.balance
}

// Total returns available + held as of the last committed mutation.
func (a *Account) Total() money.CheckedDecimal {
	return a.total
}

// Mutate applies fn to a scratch copy of the balance and commits the copy only
// if fn succeeds and the recomputed total stays representable. On any failure
// the account keeps its previous balance, so a multi-field update (dispute,
// resolve) either lands fully or not at all.
func (a *Account) Mutate(fn func(*Balance) error) error {
	scratch := a.balance
	if err := fn(&scratch); err != nil {
		return err
	}
	total, err := scratch.Available.Add(scratch.Held)
	if err != nil {
		return err
	}
	a.balance = scratch
	a.total = total
	return nil
}
