package memory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/payments-ledger-engine/internal/errors"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
)

func TestMemoryAccountStore_GetOrCreate(t *testing.T) {
	store := NewMemoryAccountStore()

	first := store.GetOrCreate(3)
	require.NotNil(t, first)
	assert.Equal(t, uint16(3), first.ID)
	assert.True(t, first.Total.IsZero())
	assert.False(t, first.Locked)

	again := store.GetOrCreate(3)
	assert.Same(t, first, again)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryAccountStore_Get(t *testing.T) {
	store := NewMemoryAccountStore()

	_, ok := store.Get(5)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())

	created := store.GetOrCreate(5)
	found, ok := store.Get(5)
	require.True(t, ok)
	assert.Same(t, created, found)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryAccountStore_SnapshotOrder(t *testing.T) {
	store := NewMemoryAccountStore()
	for _, id := range []uint16{5, 1, 3, 1, 5, 2} {
		store.GetOrCreate(id)
	}

	var ids []uint16
	for _, a := range store.Snapshot() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []uint16{5, 1, 3, 2}, ids)
}

func TestMemoryAccountStore_SnapshotIsDetached(t *testing.T) {
	store := NewMemoryAccountStore()
	acct := store.GetOrCreate(1)
	require.NoError(t, acct.Deposit(decimal.NewFromInt(2)))

	snap := store.Snapshot()
	snap[0].Locked = true

	assert.False(t, acct.Locked)
	assert.Equal(t, store.Snapshot(), store.Snapshot())
}

func TestMemoryTransactionLog(t *testing.T) {
	log := NewMemoryTransactionLog()
	entry := models.LedgerEntry{TxID: 1, ClientID: 1, Type: models.TxDeposit, Amount: decimal.NewFromInt(10)}

	t.Run("insert and find", func(t *testing.T) {
		require.NoError(t, log.Insert(entry))

		found, ok := log.FindMutable(1)
		require.True(t, ok)
		assert.Equal(t, entry, *found)
	})

	t.Run("duplicate insert keeps the original", func(t *testing.T) {
		dup := models.LedgerEntry{TxID: 1, ClientID: 2, Type: models.TxWithdrawal, Amount: decimal.NewFromInt(1)}
		err := log.Insert(dup)
		assert.ErrorIs(t, err, errors.ErrDuplicateTransaction)

		found, _ := log.FindMutable(1)
		assert.Equal(t, entry, *found)
		assert.Equal(t, 1, log.Len())
	})

	t.Run("found entry is mutable in place", func(t *testing.T) {
		found, _ := log.FindMutable(1)
		found.Disputed = true

		again, _ := log.FindMutable(1)
		assert.True(t, again.Disputed)
	})

	t.Run("only deposits and withdrawals are logged", func(t *testing.T) {
		err := log.Insert(models.LedgerEntry{TxID: 2, ClientID: 1, Type: models.TxDispute})
		assert.ErrorIs(t, err, errors.ErrInvalidTransaction)

		_, ok := log.FindMutable(2)
		assert.False(t, ok)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, ok := log.FindMutable(404)
		assert.False(t, ok)
	})
}
