// Package ledger renders canonical transactions as beancount text.
package ledger

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/banklift-dev/banklift/internal/model"
)

const dateLayout = "2006-01-02"

// Write renders transactions in input order, one entry per statement
// row, followed by a balance assertion when the statement carried a
// closing balance. The assertion is dated one day after the closing
// date, matching beancount's start-of-day balance semantics.
// Every transaction must have a counter account; the normalizer seeds
// it with the unknown account, so an empty one is a programming error.
func Write(w io.Writer, txns []model.Transaction, closing *model.Balance, flag string) error {
	bw := bufio.NewWriter(w)

	for i, txn := range txns {
		if txn.CounterAccount == "" {
			return fmt.Errorf("transaction %d (%s): counter account not set", i+1, txn.Payee)
		}
		if i > 0 {
			fmt.Fprintln(bw)
		}
		writeTransaction(bw, txn, flag)
	}

	if closing != nil {
		if len(txns) > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "%s balance %s  %s %s\n",
			closing.Date.AddDate(0, 0, 1).Format(dateLayout),
			closing.Account, closing.Amount.StringFixed(2), closing.Currency)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}

// writeTransaction emits one entry, counter posting first and the
// primary account last, the layout the guessing history is read back
// from.
func writeTransaction(w io.Writer, txn model.Transaction, flag string) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		txn.Date.Format(dateLayout), flag, quote(txn.Payee), quote(txn.Note))
	fmt.Fprintf(w, "  %s  %s %s\n", txn.CounterAccount, txn.Amount.Neg().StringFixed(2), txn.Currency)
	fmt.Fprintf(w, "  %s  %s %s\n", txn.PrimaryAccount, txn.Amount.StringFixed(2), txn.Currency)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
