package ingest

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
)

const (
	colType   = "type"
	colClient = "client"
	colTx     = "tx"
	colAmount = "amount"
)

// RowError is a row that could not be turned into a transaction.
// The row is skipped; reading can continue with Next.
type RowError struct {
	Line   int
	Record []string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: invalid transaction row %q: %v", e.Line, strings.Join(e.Record, ","), e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Reader streams transactions from CSV input with a header row.
// Columns are located by header name, so their order does not matter, and
// the amount column may be missing entirely or left off dispute rows.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
}

// NewReader reads the header row from r.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colType, colClient, colTx} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("read header: missing %q column", required)
		}
	}

	return &Reader{csv: cr, columns: columns}, nil
}

// Next returns the next transaction. It returns io.EOF at the end of input,
// a *RowError for a malformed row (the caller may keep reading), and any
// other error when the input itself can no longer be read.
func (r *Reader) Next() (models.Transaction, error) {
	record, err := r.csv.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if stderrors.As(err, &parseErr) {
			return models.Transaction{}, &RowError{Line: parseErr.StartLine, Record: record, Err: parseErr.Err}
		}
		return models.Transaction{}, err
	}

	line, _ := r.csv.FieldPos(0)
	tx, err := r.parse(record)
	if err != nil {
		return models.Transaction{}, &RowError{Line: line, Record: record, Err: err}
	}
	return tx, nil
}

func (r *Reader) parse(record []string) (models.Transaction, error) {
	txType, err := models.ParseTxType(r.field(record, colType))
	if err != nil {
		return models.Transaction{}, err
	}

	client, err := strconv.ParseUint(r.field(record, colClient), 10, 16)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("client: %w", err)
	}

	id, err := strconv.ParseUint(r.field(record, colTx), 10, 32)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("tx: %w", err)
	}

	tx := models.Transaction{
		ID:       uint32(id),
		Type:     txType,
		ClientID: uint16(client),
	}

	if raw := r.field(record, colAmount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("amount: %w", err)
		}
		tx.Amount = decimal.NewNullDecimal(amount)
	}
	return tx, nil
}

// field returns the trimmed value of the named column, or "" when the row is
// shorter than the header.
func (r *Reader) field(record []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
