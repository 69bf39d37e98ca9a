package interfaces

import (
	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
)

// AccountStore owns every account seen during a run.
type AccountStore interface {
	// GetOrCreate returns the account for clientID, creating it with zero
	// balances on first use.
	GetOrCreate(clientID uint16) *models.Account
	// Get returns the account for clientID without creating it.
	Get(clientID uint16) (*models.Account, bool)
	// Snapshot returns copies of all accounts in creation order.
	Snapshot() []models.Account
}

// TransactionLog owns the disputable transactions (deposits and withdrawals).
type TransactionLog interface {
	Insert(entry models.LedgerEntry) error
	FindMutable(txID uint32) (*models.LedgerEntry, bool)
}
