// Package importer turns bank and budgeting-app CSV exports into normalized
// transactions, and writes transactions back out as CSV.
package importer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cleared-dev/finboard/internal/categorize"
	"github.com/cleared-dev/finboard/internal/model"
)

// Result is the outcome of parsing one CSV document. Errors holds one entry
// per rejected row; rows that parse cleanly are kept.
type Result struct {
	Format       string // detected layout name, empty when undetected
	Transactions []model.Transaction
	Errors       []string
}

// Parser reads CSV text using a set of header layouts.
type Parser struct {
	registry *Registry
}

// NewParser creates a Parser over the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse reads csvText with the built-in formats.
func Parse(csvText, accountID string) Result {
	return NewParser(DefaultRegistry()).Parse(csvText, accountID)
}

var lineSplit = regexp.MustCompile(`\r\n|\r|\n`)

// Parse reads csvText and attributes every row to accountID. It never fails
// as a whole for a bad row; an unrecognised header yields a single error and
// no transactions.
func (p *Parser) Parse(csvText, accountID string) Result {
	lines := lineSplit.Split(csvText, -1)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return Result{Errors: []string{"CSV file is empty"}}
	}

	headerRow := splitRow(lines[0])
	headers := make([]string, len(headerRow))
	for i, h := range headerRow {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	format := p.registry.Detect(headers)
	if format == nil {
		return Result{Errors: []string{
			"Unsupported CSV format: expected columns date, description, and amount (or debit/credit)",
		}}
	}

	res := Result{Format: format.Name()}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		tx, err := parseRow(format, headers, lines[i], accountID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Error on line %d: %v", i+1, err))
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

func parseRow(format Format, headers []string, line, accountID string) (model.Transaction, error) {
	values := splitRow(line)
	if len(values) < len(headers) {
		return model.Transaction{}, fmt.Errorf("Row has %d values but expected %d", len(values), len(headers)) //nolint:staticcheck // message is user-facing
	}

	fields := make(map[string]string, len(headers))
	for i, h := range headers {
		fields[h] = strings.TrimSpace(values[i])
	}
	if a, ok := format.(aliaser); ok {
		for from, to := range a.Aliases() {
			if v, found := fields[from]; found && fields[to] == "" {
				fields[to] = v
			}
		}
	}

	date, err := ParseDate(fields[colDate])
	if err != nil {
		return model.Transaction{}, err
	}

	desc := fields[colDescription]
	if desc == "" {
		desc = "Unknown"
	}

	amount, err := format.Amount(fields)
	if err != nil {
		return model.Transaction{}, err
	}

	tx := model.Transaction{
		AccountID:   accountID,
		Date:        date,
		Description: desc,
		Amount:      amount,
		Merchant:    fields[colMerchant],
	}
	if tx.Merchant == "" {
		tx.Merchant = MerchantFromDescription(desc)
	}

	tx.Category = fields[colCategory]
	if tx.Category == "" {
		tx.Category = categorize.Categorize(tx)
	}
	return tx, nil
}

// splitRow tokenizes a single line. Every double quote toggles quoting and
// is dropped; commas inside quotes are data. A doubled quote inside a quoted
// field is a literal quote, which keeps WriteCSV output readable.
func splitRow(line string) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			field.WriteRune('"')
			i++
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	return append(fields, field.String())
}

var directLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

var dateSplit = regexp.MustCompile(`[/.\-]`)

// ParseDate accepts ISO dates and timestamps, then falls back to three
// separated parts read as MM/DD/YYYY and finally DD/MM/YYYY.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range directLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	parts := dateSplit.Split(s, -1)
	if len(parts) == 3 {
		candidates := []string{
			parts[2] + "-" + parts[0] + "-" + parts[1],
			parts[2] + "-" + parts[1] + "-" + parts[0],
		}
		for _, c := range candidates {
			if t, err := time.Parse("2006-1-2", c); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("Invalid date: %s", raw) //nolint:staticcheck // message is user-facing
}

// MerchantFromDescription derives a merchant name: short descriptions are
// used whole, longer ones are cut to their first two words.
func MerchantFromDescription(desc string) string {
	words := strings.Fields(desc)
	if len(words) <= 3 {
		return strings.TrimSpace(desc)
	}
	return words[0] + " " + words[1]
}
