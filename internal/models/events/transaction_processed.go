package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusApplied  = "applied"
	StatusRejected = "rejected"
)

// TransactionProcessed is published once per transaction handed to the engine.
type TransactionProcessed struct {
	RunID         string           `json:"run_id"`
	TransactionID uint32           `json:"tx"`
	ClientID      uint16           `json:"client"`
	Type          string           `json:"type"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Status        string           `json:"status"`
	ErrorCode     string           `json:"error_code,omitempty"`
	Error         string           `json:"error,omitempty"`
	Account       *AccountBalance  `json:"account,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// AccountBalance is the account state right after the transaction.
type AccountBalance struct {
	Available decimal.Decimal `json:"available"`
	Held      decimal.Decimal `json:"held"`
	Total     decimal.Decimal `json:"total"`
	Locked    bool            `json:"locked"`
}
