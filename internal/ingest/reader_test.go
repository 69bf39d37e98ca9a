package ingest

import (
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
)

// readAll drains the reader, splitting good transactions from row errors.
func readAll(t *testing.T, input string) ([]models.Transaction, []*RowError) {
	t.Helper()
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	var txs []models.Transaction
	var rowErrs []*RowError
	for {
		tx, err := r.Next()
		if err == io.EOF {
			return txs, rowErrs
		}
		var rowErr *RowError
		if stderrors.As(err, &rowErr) {
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		require.NoError(t, err)
		txs = append(txs, tx)
	}
}

func TestReader_Basic(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 1.0\n" +
		"withdrawal, 2, 5, 3.0\n" +
		"dispute, 1, 1,\n" +
		"resolve, 1, 1\n" +
		"chargeback,1,1,\n"

	txs, rowErrs := readAll(t, input)
	require.Empty(t, rowErrs)
	require.Len(t, txs, 5)

	assert.Equal(t, models.TxDeposit, txs[0].Type)
	assert.Equal(t, uint16(1), txs[0].ClientID)
	assert.Equal(t, uint32(1), txs[0].ID)
	require.True(t, txs[0].Amount.Valid)
	assert.True(t, decimal.RequireFromString("1.0").Equal(txs[0].Amount.Decimal))

	assert.Equal(t, models.TxWithdrawal, txs[1].Type)
	assert.Equal(t, uint32(5), txs[1].ID)

	for _, tx := range txs[2:] {
		assert.False(t, tx.Amount.Valid, "%s carries no amount", tx.Type)
	}
	assert.Equal(t, models.TxResolve, txs[3].Type)
	assert.Equal(t, models.TxChargeback, txs[4].Type)
}

func TestReader_ColumnsByName(t *testing.T) {
	input := "amount,tx,type,client\n" +
		"2.5,7,deposit,3\n"

	txs, rowErrs := readAll(t, input)
	require.Empty(t, rowErrs)
	require.Len(t, txs, 1)
	assert.Equal(t, uint32(7), txs[0].ID)
	assert.Equal(t, uint16(3), txs[0].ClientID)
	assert.True(t, decimal.RequireFromString("2.5").Equal(txs[0].Amount.Decimal))
}

func TestReader_WithoutAmountColumn(t *testing.T) {
	txs, rowErrs := readAll(t, "type,client,tx\ndispute,1,4\n")
	require.Empty(t, rowErrs)
	require.Len(t, txs, 1)
	assert.False(t, txs[0].Amount.Valid)
}

func TestReader_MalformedRowsAreSkipped(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,1.0\n" +
		"transfer,1,2,1.0\n" +
		"deposit,70000,3,1.0\n" +
		"deposit,1,-4,1.0\n" +
		"deposit,1,5,abc\n" +
		"deposit,,6,1.0\n" +
		"withdrawal,1,7,0.5\n"

	txs, rowErrs := readAll(t, input)
	require.Len(t, txs, 2)
	assert.Equal(t, uint32(1), txs[0].ID)
	assert.Equal(t, uint32(7), txs[1].ID)

	require.Len(t, rowErrs, 5)
	assert.Equal(t, 3, rowErrs[0].Line)
	assert.Equal(t, 7, rowErrs[4].Line)
	assert.Contains(t, rowErrs[0].Error(), "line 3")
	assert.Contains(t, rowErrs[0].Error(), "transfer,1,2,1.0")
	assert.Contains(t, rowErrs[1].Error(), "client")
	assert.Contains(t, rowErrs[3].Error(), "amount")
}

func TestReader_QuoteErrorIsARowError(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,1\"0\n" +
		"deposit,1,2,1.0\n"

	txs, rowErrs := readAll(t, input)
	require.Len(t, rowErrs, 1)
	assert.Equal(t, 2, rowErrs[0].Line)
	require.Len(t, txs, 1)
	assert.Equal(t, uint32(2), txs[0].ID)
}

func TestNewReader_Header(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := NewReader(strings.NewReader(""))
		assert.ErrorContains(t, err, "empty input")
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := NewReader(strings.NewReader("type,client,amount\n"))
		assert.ErrorContains(t, err, `missing "tx" column`)
	})

	t.Run("header is trimmed and case-insensitive", func(t *testing.T) {
		_, err := NewReader(strings.NewReader(" Type , CLIENT ,tx , Amount\n"))
		assert.NoError(t, err)
	})
}
