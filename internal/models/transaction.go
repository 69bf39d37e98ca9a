package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TxType is the kind of an incoming transaction
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxDispute    TxType = "dispute"
	TxResolve    TxType = "resolve"
	TxChargeback TxType = "chargeback"
)

// ParseTxType accepts the type column as written in the input, ignoring case
// and surrounding whitespace.
func ParseTxType(s string) (TxType, error) {
	switch t := TxType(strings.ToLower(strings.TrimSpace(s))); t {
	case TxDeposit, TxWithdrawal, TxDispute, TxResolve, TxChargeback:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Logged reports whether transactions of this kind are recorded in the
// transaction log and can later be disputed.
func (t TxType) Logged() bool {
	return t == TxDeposit || t == TxWithdrawal
}

// Transaction represents one row of the input stream.
// Dispute, resolve and chargeback carry no amount of their own.
type Transaction struct {
	ID       uint32
	Type     TxType
	ClientID uint16
	Amount   decimal.NullDecimal
}
