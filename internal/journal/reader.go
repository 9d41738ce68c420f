// Package journal reads the historical corpus out of a beancount
// journal. The journal is input only; nothing in this tool writes to
// it.
package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/banklift-dev/banklift/internal/accounts"
	"github.com/banklift-dev/banklift/internal/model"
)

const dateLayout = "2006-01-02"

// Read parses a beancount journal and returns the booking history for
// primaryAccount, in file order. An entry contributes a record when it
// has a non-empty payee, posts to the primary account, and posts to at
// least one other account; everything else is skipped. Only the
// subset of the format needed here is understood: transaction
// directives and their posting lines. Other directives are ignored.
func Read(r io.Reader, primaryAccount string) ([]model.HistoricalRecord, error) {
	var (
		records    []model.HistoricalRecord
		entryDate  time.Time
		entryPayee string
		postings   []string
		collecting bool
	)

	finalize := func() {
		defer func() { collecting = false; postings = nil }()
		if !collecting || entryPayee == "" {
			return
		}
		primary := false
		counter := ""
		for _, account := range postings {
			if account == primaryAccount {
				primary = true
			} else if counter == "" {
				counter = account
			}
		}
		if !primary || counter == "" {
			return
		}
		records = append(records, model.HistoricalRecord{
			Date:           entryDate,
			Payee:          entryPayee,
			PrimaryAccount: primaryAccount,
			CounterAccount: counter,
		})
	}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()

		switch {
		case startsWithDate(text):
			finalize()
			date, payee, isTxn, err := parseDirective(text, line)
			if err != nil {
				return nil, err
			}
			if isTxn {
				collecting = true
				entryDate = date
				entryPayee = payee
			}
		case collecting && indented(text):
			if account := postingAccount(text); account != "" {
				postings = append(postings, account)
			}
		case strings.TrimSpace(text) == "" || strings.HasPrefix(text, ";"):
			// Blank lines and comments never carry postings.
		default:
			finalize()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	finalize()

	return records, nil
}

// Load reads the journal file at path. A missing journal is not an
// error; it degrades to an empty history and every transaction stays
// unclassified.
func Load(path, primaryAccount string) ([]model.HistoricalRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	records, err := Read(f, primaryAccount)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return records, nil
}

// parseDirective splits a date-prefixed line into its date and, for
// transaction directives, the payee. The payee is the first of two
// quoted strings; a single quoted string is the narration and means
// the entry has no payee.
func parseDirective(text string, line int) (date time.Time, payee string, isTxn bool, err error) {
	date, err = time.Parse(dateLayout, text[:len(dateLayout)])
	if err != nil {
		return time.Time{}, "", false, fmt.Errorf("line %d: parsing date %q: %w", line, text[:len(dateLayout)], err)
	}

	rest := strings.TrimSpace(text[len(dateLayout):])
	flag, _, _ := strings.Cut(rest, " ")
	switch flag {
	case "*", "!", "P", "txn":
	default:
		return date, "", false, nil
	}

	quoted := quotedStrings(rest)
	if len(quoted) >= 2 {
		payee = quoted[0]
	}
	return date, payee, true, nil
}

func startsWithDate(text string) bool {
	if len(text) < len(dateLayout) {
		return false
	}
	for i, r := range text[:len(dateLayout)] {
		if i == 4 || i == 7 {
			if r != '-' {
				return false
			}
		} else if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func indented(text string) bool {
	return strings.HasPrefix(text, " ") || strings.HasPrefix(text, "\t")
}

// postingAccount returns the account of a posting line, or "" when the
// line is not a posting (a comment, metadata, or a tag line).
func postingAccount(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	first := fields[0]
	// Postings may carry their own flag before the account.
	if (first == "!" || first == "*") && len(fields) > 1 {
		first = fields[1]
	}
	if !accounts.Valid(first) {
		return ""
	}
	return first
}

func quotedStrings(s string) []string {
	var out []string
	for {
		i := strings.IndexByte(s, '"')
		if i < 0 {
			return out
		}
		s = s[i+1:]
		j := strings.IndexByte(s, '"')
		if j < 0 {
			return out
		}
		out = append(out, s[:j])
		s = s[j+1:]
	}
}
