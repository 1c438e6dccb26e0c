// Package export formats transactions as CSV and archives exports to Cloud Storage.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"kopilka/internal/models"
)

const dateFormat = "2006-01-02"

// Header lists the export columns in order.
var Header = []string{"date", "kind", "amount", "currency", "category", "description", "merchant", "member"}

// WriteTransactions writes the header and one row per transaction.
func WriteTransactions(w io.Writer, transactions []models.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range transactions {
		if err := cw.Write(row(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(t models.Transaction) []string {
	member := ""
	if t.User != nil {
		member = t.User.Label()
	}
	return []string{
		t.Date.UTC().Format(dateFormat),
		string(t.Kind),
		t.Amount.StringFixed(2),
		t.Currency,
		t.Category,
		t.Description,
		t.Merchant,
		member,
	}
}
