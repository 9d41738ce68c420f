// Package match infers counter accounts for new transactions from the
// booking history of their payees. The engine is deliberately simple:
// exact payee lookup plus most-recent-wins. An explicit unknown result
// that asks for manual review costs less than a wrong silent guess.
package match

import (
	"sort"
	"strings"
	"time"

	"github.com/banklift-dev/banklift/internal/model"
	"github.com/banklift-dev/banklift/internal/normalize"
)

// Options configures index construction.
type Options struct {
	// CaseInsensitive folds payees before grouping and lookup, so a
	// historical "REWE Markt" matches an incoming "Rewe Markt".
	// Off by default: matching is case-sensitive.
	CaseInsensitive bool
}

// Index maps normalized payees to their booking history, most recent
// first. Built once per import run and read-only afterwards.
type Index struct {
	groups map[string][]model.HistoricalRecord
	fold   bool
}

// NewIndex groups records by exact normalized payee and orders each
// group by date descending. The sort is stable, so records sharing a
// date keep their corpus order and repeated runs over the same journal
// give identical answers. Records with an empty payee are skipped.
func NewIndex(records []model.HistoricalRecord, opts Options) *Index {
	idx := &Index{
		groups: make(map[string][]model.HistoricalRecord),
		fold:   opts.CaseInsensitive,
	}
	for _, rec := range records {
		key := idx.key(rec.Payee)
		if key == "" {
			continue
		}
		idx.groups[key] = append(idx.groups[key], rec)
	}
	for _, group := range idx.groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Date.After(group[j].Date)
		})
	}
	return idx
}

func (idx *Index) key(payee string) string {
	key := normalize.Payee(payee)
	if idx.fold {
		key = strings.ToLower(key)
	}
	return key
}

// Len returns the number of distinct payees in the index.
func (idx *Index) Len() int { return len(idx.groups) }

// Infer returns the counter account booked for the most recent prior
// transaction with the same payee. The second result is false when the
// payee has no history; that is the normal outcome for first-time
// payees, not an error.
func (idx *Index) Infer(payee string) (string, bool) {
	group := idx.groups[idx.key(payee)]
	if len(group) == 0 {
		return "", false
	}
	return group[0].CounterAccount, true
}

// InferAt is Infer restricted to history dated on or before asOf.
// Statements normally postdate the whole journal, so Infer and InferAt
// agree; InferAt stays correct when an older statement is re-imported
// against a journal that already contains later bookings.
func (idx *Index) InferAt(payee string, asOf time.Time) (string, bool) {
	for _, rec := range idx.groups[idx.key(payee)] {
		if !rec.Date.After(asOf) {
			return rec.CounterAccount, true
		}
	}
	return "", false
}
