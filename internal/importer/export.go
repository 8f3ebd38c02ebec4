package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/finboard/internal/model"
)

// ExportHeader is the header row written by WriteCSV.
const ExportHeader = "Date,Description,Amount,Category,Merchant"

const exportDateFormat = "2006-01-02"

// WriteCSV writes txs with ExportHeader. Description and merchant are always
// quoted; the output reads back through Parse as the standard format.
func WriteCSV(w io.Writer, txs []model.Transaction) error {
	if _, err := io.WriteString(w, ExportHeader+"\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range txs {
		if _, err := io.WriteString(w, MarshalRow(tx)+"\n"); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return nil
}

// ToCSV renders txs as CSV text.
func ToCSV(txs []model.Transaction) string {
	var sb strings.Builder
	_ = WriteCSV(&sb, txs)
	return sb.String()
}

// MarshalRow converts a transaction to one CSV line (without newline).
func MarshalRow(tx model.Transaction) string {
	return strings.Join([]string{
		tx.Date.Format(exportDateFormat),
		quote(tx.Description),
		tx.Amount.StringFixed(2),
		tx.Category,
		quote(tx.Merchant),
	}, ",")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
