package models

import (
	"github.com/shopspring/decimal"
)

// LedgerEntry is the stored record of an applied deposit or withdrawal.
// Disputed is the only field that changes after insertion.
type LedgerEntry struct {
	TxID     uint32          // unique across the log
	ClientID uint16          // owning account
	Type     TxType          // deposit or withdrawal
	Amount   decimal.Decimal // amount moved by the original transaction
	Disputed bool
}

// NewLedgerEntry records an applied transaction. The caller guarantees the
// amount is present.
func NewLedgerEntry(tx Transaction) LedgerEntry {
	return LedgerEntry{
		TxID:     tx.ID,
		ClientID: tx.ClientID,
		Type:     tx.Type,
		Amount:   tx.Amount.Decimal,
	}
}
