package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorCode string

const (
	InvalidTransaction    ErrorCode = "invalid_transaction"
	InsufficientFunds     ErrorCode = "insufficient_funds"
	InsufficientHeldFunds ErrorCode = "insufficient_held_funds"
	TransactionNotFound   ErrorCode = "transaction_not_found"
	NotDisputed           ErrorCode = "not_disputed"
	AlreadyDisputed       ErrorCode = "already_disputed"
	DuplicateTransaction  ErrorCode = "duplicate_transaction"
	AccountLocked         ErrorCode = "account_locked"
	MalformedRow          ErrorCode = "malformed_row"
)

// LedgerError is a rejected transaction. TxID and ClientID identify what was
// rejected; either may be zero when it is not known at the point of failure.
type LedgerError struct {
	Code     ErrorCode `json:"code"`
	TxID     uint32    `json:"tx"`
	ClientID uint16    `json:"client"`
	Message  string    `json:"message"`
	Details  string    `json:"details,omitempty"`
}

func (e *LedgerError) Error() string {
	if e.Code == AccountLocked {
		return fmt.Sprintf("client %d is locked", e.ClientID)
	}
	if e.Details != "" {
		return fmt.Sprintf("transaction %d: %s (%s)", e.TxID, e.Message, e.Details)
	}
	return fmt.Sprintf("transaction %d: %s", e.TxID, e.Message)
}

// Is matches on Code so the predefined errors below work with errors.Is.
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func NewLedgerError(code ErrorCode, message string) *LedgerError {
	return &LedgerError{
		Code:    code,
		Message: message,
	}
}

func NewLedgerErrorf(code ErrorCode, format string, args ...interface{}) *LedgerError {
	return &LedgerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *LedgerError) WithDetails(details string) *LedgerError {
	e.Details = details
	return e
}

// ForTx returns a copy of e stamped with the transaction and client ids.
func (e *LedgerError) ForTx(txID uint32, clientID uint16) *LedgerError {
	cp := *e
	cp.TxID = txID
	cp.ClientID = clientID
	return &cp
}

// Locked builds the AccountLocked rejection for clientID.
func Locked(clientID uint16) *LedgerError {
	return &LedgerError{
		Code:     AccountLocked,
		ClientID: clientID,
		Message:  "account is locked",
	}
}

// AsLedgerError unwraps err to a *LedgerError if it carries one.
func AsLedgerError(err error) (*LedgerError, bool) {
	var le *LedgerError
	if stderrors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// CodeOf returns the ErrorCode carried by err, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	if le, ok := AsLedgerError(err); ok {
		return le.Code
	}
	return ""
}

// Predefined errors for common cases
var (
	ErrInvalidTransaction    = NewLedgerError(InvalidTransaction, "invalid transaction")
	ErrInsufficientFunds     = NewLedgerError(InsufficientFunds, "not enough funds available")
	ErrInsufficientHeldFunds = NewLedgerError(InsufficientHeldFunds, "not enough held funds")
	ErrTransactionNotFound   = NewLedgerError(TransactionNotFound, "transaction does not exist")
	ErrNotDisputed           = NewLedgerError(NotDisputed, "transaction is not disputed")
	ErrAlreadyDisputed       = NewLedgerError(AlreadyDisputed, "transaction is already disputed")
	ErrDuplicateTransaction  = NewLedgerError(DuplicateTransaction, "transaction already exists")
	ErrAccountLocked         = NewLedgerError(AccountLocked, "account is locked")
)
