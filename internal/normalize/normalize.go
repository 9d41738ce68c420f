// Package normalize converts raw statement rows into canonical
// transactions.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/banklift-dev/banklift/internal/model"
)

// MalformedRecordError reports a statement row whose fields cannot be
// parsed into their semantic types. A single malformed row aborts the
// whole run; a silently incomplete journal is worse than a loud
// failure.
type MalformedRecordError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: malformed %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Options configures normalization for one import run. Passed by
// value; there is no ambient state.
type Options struct {
	DateLayout     string // reference layout of the bank's date format
	Currency       string // used when the row carries no currency of its own
	PrimaryAccount string
	UnknownAccount string // initial counter account for every transaction
}

// Payee trims leading and trailing whitespace and collapses internal
// whitespace runs to single spaces. Case is preserved; the operation
// is idempotent.
func Payee(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Record converts one raw statement row into a canonical Transaction.
// CounterAccount starts out as the configured unknown account.
func Record(raw model.RawRecord, opts Options) (model.Transaction, error) {
	date, err := time.Parse(opts.DateLayout, raw.Date)
	if err != nil {
		return model.Transaction{}, &MalformedRecordError{Line: raw.Line, Field: "date", Value: raw.Date, Err: err}
	}

	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return model.Transaction{}, &MalformedRecordError{Line: raw.Line, Field: "amount", Value: raw.Amount, Err: err}
	}

	currency := strings.TrimSpace(raw.Currency)
	if currency == "" {
		currency = opts.Currency
	}

	return model.Transaction{
		Date:           date,
		Payee:          Payee(raw.Payee),
		Amount:         amount,
		Currency:       currency,
		Note:           strings.TrimSpace(raw.Note),
		PrimaryAccount: opts.PrimaryAccount,
		CounterAccount: opts.UnknownAccount,
	}, nil
}

// Closing converts a raw closing balance into canonical form.
func Closing(raw model.RawBalance, opts Options) (model.Balance, error) {
	date, err := time.Parse(opts.DateLayout, raw.Date)
	if err != nil {
		return model.Balance{}, &MalformedRecordError{Line: raw.Line, Field: "date", Value: raw.Date, Err: err}
	}

	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return model.Balance{}, &MalformedRecordError{Line: raw.Line, Field: "amount", Value: raw.Amount, Err: err}
	}

	return model.Balance{
		Date:     date,
		Account:  opts.PrimaryAccount,
		Amount:   amount,
		Currency: opts.Currency,
	}, nil
}
