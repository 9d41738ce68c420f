package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownAccount is the default counter account for transactions whose
// history gives no better answer. Entries booked against it are meant
// to be reclassified by hand.
const UnknownAccount = "Unknown:Account"

// Transaction is one bank statement row in canonical form, ready to be
// rendered as a journal entry.
type Transaction struct {
	Date           time.Time
	Payee          string          // normalized counterparty name
	Amount         decimal.Decimal // signed, relative to the primary account
	Currency       string
	Note           string
	PrimaryAccount string
	CounterAccount string // never empty; UnknownAccount until inference says otherwise
}

// HistoricalRecord is a previously booked transaction read from the
// target journal. The corpus of these records drives account inference.
type HistoricalRecord struct {
	Date           time.Time
	Payee          string
	PrimaryAccount string
	CounterAccount string
}
