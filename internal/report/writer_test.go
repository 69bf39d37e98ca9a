package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
)

func TestWriteSnapshot(t *testing.T) {
	accounts := []models.Account{
		{
			ID:        2,
			Available: decimal.RequireFromString("2"),
			Held:      decimal.Zero,
			Total:     decimal.RequireFromString("2"),
		},
		{
			ID:        1,
			Available: decimal.RequireFromString("0.12345"),
			Held:      decimal.RequireFromString("1.00004"),
			Total:     decimal.RequireFromString("1.12349"),
			Locked:    true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, accounts))

	want := "client,available,held,total,locked\n" +
		"2,2.0000,0.0000,2.0000,false\n" +
		"1,0.1235,1.0000,1.1235,true\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSnapshot_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteSnapshot_SinkError(t *testing.T) {
	err := WriteSnapshot(failingWriter{}, []models.Account{*models.NewAccount(1)})
	assert.ErrorContains(t, err, "disk full")
}

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"1.5":      "1.5000",
		"-0.5":     "-0.5000",
		"1.012345": "1.0123",
		"0.00005":  "0.0001",
		"-0.00005": "-0.0001",
		"0":        "0.0000",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatAmount(decimal.RequireFromString(in)), in)
	}
}
