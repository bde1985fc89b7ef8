package accounts

import (
	"sort"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/models"
)

// Store maps client ids to accounts, creating each account lazily on first
// reference. The engine owns the store exclusively for a run; accounts are
// never destroyed.
type Store struct {
	accounts map[uint16]*Account
}

// NewStore creates an empty account store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[uint16]*Account),
	}
}

// GetOrCreate returns the account for clientID, creating it with zero
// balances and unlocked state if this is the first reference.
func (s *Store) GetOrCreate(clientID uint16) *Account {
	if account, ok := s.accounts[clientID]; ok {
		return account
	}
	account := newAccount(clientID)
	s.accounts[clientID] = account
	return account
}

// Snapshots returns the final view of every known account, sorted by client
// id so output is deterministic.
func (s *Store) Snapshots() []models.AccountSnapshot {
	snapshots := make([]models.AccountSnapshot, 0, len(s.accounts))
	for _, account := range s.accounts {
		balance := account.Balance()
		snapshots = append(snapshots, models.AccountSnapshot{
			ClientID:  account.ClientID(),
			Available: balance.Available.Decimal(),
			Held:      balance.Held.Decimal(),
			Total:     account.Total().Decimal(),
			Locked:    account.Locked(),
		})
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ClientID < snapshots[j].ClientID
	})
	return snapshots
}
