package memory

import (
	"sync" // standard Go package for concurrency primitives like Mutex

	"github.com/sheikh-saqib/payments-ledger-engine/internal/errors"
	interfaces "github.com/sheikh-saqib/payments-ledger-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
)

// MemoryAccountStore is an in-memory implementation of interfaces.AccountStore.
// Accounts are indexed by client id; order keeps the creation sequence for snapshots.
type MemoryAccountStore struct {
	mu       sync.Mutex                 // protects accounts and order
	accounts map[uint16]*models.Account // client id -> account
	order    []uint16                   // client ids in the order they were first seen
}

// NewMemoryAccountStore creates and returns an empty MemoryAccountStore
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[uint16]*models.Account),
		order:    make([]uint16, 0),
	}
}

// GetOrCreate returns the account for clientID, creating a zeroed one if needed.
// The returned pointer is only mutated by the ledger engine.
func (m *MemoryAccountStore) GetOrCreate(clientID uint16) *models.Account {

	m.mu.Lock()         // lock the mutex to prevent concurrent writes
	defer m.mu.Unlock() // unlock automatically when function exits

	if account, exists := m.accounts[clientID]; exists {
		return account
	}

	account := models.NewAccount(clientID)
	m.accounts[clientID] = account
	m.order = append(m.order, clientID)
	return account
}

// Get returns the account for clientID, or false if it was never created.
func (m *MemoryAccountStore) Get(clientID uint16) (*models.Account, bool) {

	m.mu.Lock()
	defer m.mu.Unlock()

	account, exists := m.accounts[clientID]
	return account, exists
}

// Snapshot returns a copy of every account in creation order.
// The copies are detached, so callers can't modify internal state.
func (m *MemoryAccountStore) Snapshot() []models.Account {

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]models.Account, 0, len(m.order))
	for _, id := range m.order {
		copied = append(copied, *m.accounts[id])
	}
	return copied
}

// Len returns how many accounts exist. Used by tests.
func (m *MemoryAccountStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// MemoryTransactionLog is an in-memory implementation of interfaces.TransactionLog.
type MemoryTransactionLog struct {
	mu      sync.Mutex                     // protects entries
	entries map[uint32]*models.LedgerEntry // tx id -> entry
}

// NewMemoryTransactionLog creates and returns an empty MemoryTransactionLog
func NewMemoryTransactionLog() *MemoryTransactionLog {
	return &MemoryTransactionLog{
		entries: make(map[uint32]*models.LedgerEntry),
	}
}

// Insert stores entry, failing with DuplicateTransaction if its tx id is taken.
// The existing entry is left untouched on failure.
func (m *MemoryTransactionLog) Insert(entry models.LedgerEntry) error {

	// only deposits and withdrawals can be disputed later
	if !entry.Type.Logged() {
		return errors.ErrInvalidTransaction.ForTx(entry.TxID, entry.ClientID).
			WithDetails("only deposits and withdrawals are logged")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[entry.TxID]; exists {
		return errors.ErrDuplicateTransaction.ForTx(entry.TxID, entry.ClientID)
	}

	stored := entry
	m.entries[entry.TxID] = &stored
	return nil
}

// FindMutable returns the stored entry for txID so its dispute flag can be toggled.
func (m *MemoryTransactionLog) FindMutable(txID uint32) (*models.LedgerEntry, bool) {

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[txID]
	return entry, exists
}

// Len returns how many entries are stored. Used by tests.
func (m *MemoryTransactionLog) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Compile-time check: ensure the memory stores implement their interfaces
var (
	_ interfaces.AccountStore   = (*MemoryAccountStore)(nil)
	_ interfaces.TransactionLog = (*MemoryTransactionLog)(nil)
)
