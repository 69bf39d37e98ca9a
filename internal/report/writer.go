package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/payments-ledger-engine/internal/models"
)

// Precision is the number of decimal places written for every amount.
const Precision = 4

var header = []string{"client", "available", "held", "total", "locked"}

// WriteSnapshot writes one CSV row per account, in the order given.
func WriteSnapshot(w io.Writer, accounts []models.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range accounts {
		if err := cw.Write(Row(a)); err != nil {
			return fmt.Errorf("write client %d: %w", a.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return nil
}

// Row renders a single account.
func Row(a models.Account) []string {
	return []string{
		strconv.FormatUint(uint64(a.ID), 10),
		FormatAmount(a.Available),
		FormatAmount(a.Held),
		FormatAmount(a.Total),
		strconv.FormatBool(a.Locked),
	}
}

// FormatAmount rounds half away from zero to Precision places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(Precision)
}
