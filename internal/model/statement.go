package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one statement row as extracted from a bank export,
// before any semantic parsing. All fields are strings in the bank's
// own formats except Amount, which parsers emit as a plain signed
// decimal string.
type RawRecord struct {
	Line     int // first physical line of the row in the source file
	Date     string
	Payee    string
	Amount   string
	Currency string
	Note     string
}

// RawBalance is the statement's closing balance row, unparsed.
type RawBalance struct {
	Line   int
	Date   string
	Amount string
}

// Statement is one parsed bank export: rows in file order plus an
// optional closing balance.
type Statement struct {
	Records []RawRecord
	Closing *RawBalance
}

// Balance is a closing-balance assertion in canonical form.
type Balance struct {
	Date     time.Time
	Account  string
	Amount   decimal.Decimal
	Currency string
}
