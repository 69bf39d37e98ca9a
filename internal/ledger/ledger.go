package ledger

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/payments-ledger-engine/internal/errors"
	interfaces "github.com/sheikh-saqib/payments-ledger-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
)

// Ledger is the transaction state machine.
// It is the only writer of the account store and the transaction log; mu is
// held for the whole of one Apply so both stores change together.
type Ledger struct {
	accounts interfaces.AccountStore   // balance state per client
	log      interfaces.TransactionLog // disputable deposits and withdrawals
	mu       sync.Mutex
}

// NewLedger creates a Ledger over the given stores (memory, or anything else
// implementing the interfaces).
func NewLedger(accounts interfaces.AccountStore, log interfaces.TransactionLog) *Ledger {
	return &Ledger{
		accounts: accounts,
		log:      log,
	}
}

// Apply processes one transaction.
//
// The client's account is created on first sight even when the transaction is
// then rejected. A rejected transaction returns a *errors.LedgerError and
// leaves every balance and ledger entry exactly as it was.
func (l *Ledger) Apply(tx models.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account := l.accounts.GetOrCreate(tx.ClientID)

	switch tx.Type {
	case models.TxDeposit:
		return l.deposit(account, tx)
	case models.TxWithdrawal:
		return l.withdraw(account, tx)
	case models.TxDispute:
		return l.dispute(account, tx)
	case models.TxResolve:
		return l.resolve(account, tx)
	case models.TxChargeback:
		return l.chargeback(account, tx)
	default:
		return errors.ErrInvalidTransaction.ForTx(tx.ID, tx.ClientID).
			WithDetails(fmt.Sprintf("unknown type %q", tx.Type))
	}
}

// Snapshot returns every account in creation order.
func (l *Ledger) Snapshot() []models.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.accounts.Snapshot()
}

// Account returns a copy of one client's account. Unlike Apply it never
// creates the account.
func (l *Ledger) Account(clientID uint16) (models.Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts.Get(clientID)
	if !ok {
		return models.Account{}, false
	}
	return *account, true
}

func (l *Ledger) deposit(account *models.Account, tx models.Transaction) error {
	amount, err := requireAmount(tx)
	if err != nil {
		return err
	}
	if err := account.CheckUnlocked(); err != nil {
		return stamp(err, tx)
	}
	if err := l.checkUnique(tx); err != nil {
		return err
	}

	if err := account.Deposit(amount); err != nil {
		return stamp(err, tx)
	}
	return l.log.Insert(models.NewLedgerEntry(tx))
}

func (l *Ledger) withdraw(account *models.Account, tx models.Transaction) error {
	amount, err := requireAmount(tx)
	if err != nil {
		return err
	}
	if err := account.CheckWithdraw(amount); err != nil {
		return stamp(err, tx)
	}
	if err := l.checkUnique(tx); err != nil {
		return err
	}

	if err := account.Withdraw(amount); err != nil {
		return stamp(err, tx)
	}
	return l.log.Insert(models.NewLedgerEntry(tx))
}

// dispute holds the amount of the referenced entry.
// A second dispute on an entry that is already disputed is rejected rather
// than holding the same funds twice.
func (l *Ledger) dispute(account *models.Account, tx models.Transaction) error {
	entry, ok := l.log.FindMutable(tx.ID)
	if !ok {
		return errors.ErrTransactionNotFound.ForTx(tx.ID, tx.ClientID)
	}
	if err := account.CheckUnlocked(); err != nil {
		return stamp(err, tx)
	}
	if entry.Disputed {
		return errors.ErrAlreadyDisputed.ForTx(tx.ID, tx.ClientID)
	}

	if err := account.Hold(entry.Amount); err != nil {
		return stamp(err, tx)
	}
	entry.Disputed = true
	return nil
}

func (l *Ledger) resolve(account *models.Account, tx models.Transaction) error {
	entry, err := l.findDisputed(tx)
	if err != nil {
		return err
	}
	if err := account.CheckUnlocked(); err != nil {
		return stamp(err, tx)
	}

	if err := account.Release(entry.Amount); err != nil {
		return stamp(err, tx)
	}
	entry.Disputed = false
	return nil
}

func (l *Ledger) chargeback(account *models.Account, tx models.Transaction) error {
	entry, err := l.findDisputed(tx)
	if err != nil {
		return err
	}
	if err := account.CheckUnlocked(); err != nil {
		return stamp(err, tx)
	}

	if err := account.Chargeback(entry.Amount); err != nil {
		return stamp(err, tx)
	}
	entry.Disputed = false
	return nil
}

func (l *Ledger) findDisputed(tx models.Transaction) (*models.LedgerEntry, error) {
	entry, ok := l.log.FindMutable(tx.ID)
	if !ok {
		return nil, errors.ErrTransactionNotFound.ForTx(tx.ID, tx.ClientID)
	}
	if !entry.Disputed {
		return nil, errors.ErrNotDisputed.ForTx(tx.ID, tx.ClientID)
	}
	return entry, nil
}

// checkUnique rejects a deposit or withdrawal whose id is already logged,
// before any balance is touched.
func (l *Ledger) checkUnique(tx models.Transaction) error {
	if _, exists := l.log.FindMutable(tx.ID); exists {
		return errors.ErrDuplicateTransaction.ForTx(tx.ID, tx.ClientID)
	}
	return nil
}

func requireAmount(tx models.Transaction) (decimal.Decimal, error) {
	if !tx.Amount.Valid {
		return decimal.Zero, errors.ErrInvalidTransaction.ForTx(tx.ID, tx.ClientID).
			WithDetails("missing amount")
	}
	if tx.Amount.Decimal.IsNegative() {
		return decimal.Zero, errors.ErrInvalidTransaction.ForTx(tx.ID, tx.ClientID).
			WithDetails("negative amount")
	}
	return tx.Amount.Decimal, nil
}

// stamp attaches the transaction identity to an error raised by the account.
func stamp(err error, tx models.Transaction) error {
	if le, ok := errors.AsLedgerError(err); ok {
		return le.ForTx(tx.ID, tx.ClientID)
	}
	return err
}
