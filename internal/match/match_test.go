package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banklift-dev/banklift/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func rec(payee, counter string, y, m, d int) model.HistoricalRecord {
	return model.HistoricalRecord{
		Date:           date(y, m, d),
		Payee:          payee,
		PrimaryAccount: "Assets:Bank:Checking",
		CounterAccount: counter,
	}
}

func TestInfer_MostRecentWins(t *testing.T) {
	idx := NewIndex([]model.HistoricalRecord{
		rec("ACME", "Expenses:A", 2023, 1, 1),
		rec("ACME", "Expenses:B", 2023, 6, 1),
	}, Options{})

	got, ok := idx.Infer("ACME")
	require.True(t, ok)
	assert.Equal(t, "Expenses:B", got)
}

func TestInfer_CorpusOrderIrrelevantForDates(t *testing.T) {
	// Same records, reversed corpus order: the date still decides.
	idx := NewIndex([]model.HistoricalRecord{
		rec("ACME", "Expenses:B", 2023, 6, 1),
		rec("ACME", "Expenses:A", 2023, 1, 1),
	}, Options{})

	got, ok := idx.Infer("ACME")
	require.True(t, ok)
	assert.Equal(t, "Expenses:B", got)
}

func TestInfer_TieBreakIsStable(t *testing.T) {
	records := []model.HistoricalRecord{
		rec("ACME", "Expenses:First", 2023, 6, 1),
		rec("ACME", "Expenses:Second", 2023, 6, 1),
	}

	// First-encountered-in-corpus wins, on every run.
	for i := 0; i < 10; i++ {
		idx := NewIndex(records, Options{})
		got, ok := idx.Infer("ACME")
		require.True(t, ok)
		assert.Equal(t, "Expenses:First", got)
	}
}

func TestInfer_UnknownPayee(t *testing.T) {
	idx := NewIndex([]model.HistoricalRecord{
		rec("ACME", "Expenses:A", 2023, 1, 1),
	}, Options{})

	_, ok := idx.Infer("Globex")
	assert.False(t, ok)
}

func TestInfer_EmptyCorpus(t *testing.T) {
	idx := NewIndex(nil, Options{})
	assert.Equal(t, 0, idx.Len())

	for _, payee := range []string{"ACME", "", "REWE Markt"} {
		_, ok := idx.Infer(payee)
		assert.False(t, ok, "payee %q", payee)
	}
}

func TestInfer_UnresolvedHistoryPropagates(t *testing.T) {
	// A prior transaction that itself was never classified is matched
	// like any other account value.
	idx := NewIndex([]model.HistoricalRecord{
		rec("Mystery GmbH", model.UnknownAccount, 2023, 3, 1),
	}, Options{})

	got, ok := idx.Infer("Mystery GmbH")
	require.True(t, ok)
	assert.Equal(t, model.UnknownAccount, got)
}

func TestInfer_CaseSensitiveByDefault(t *testing.T) {
	idx := NewIndex([]model.HistoricalRecord{
		rec("REWE Markt", "Expenses:Food", 2023, 1, 1),
	}, Options{})

	_, ok := idx.Infer("Rewe Markt")
	assert.False(t, ok)
}

func TestInfer_CaseInsensitiveMode(t *testing.T) {
	idx := NewIndex([]model.HistoricalRecord{
		rec("REWE Markt", "Expenses:Food", 2023, 1, 1),
	}, Options{CaseInsensitive: true})

	got, ok := idx.Infer("Rewe Markt")
	require.True(t, ok)
	assert.Equal(t, "Expenses:Food", got)
}

func TestInfer_NormalizesLookupPayee(t *testing.T) {
	idx := NewIndex([]model.HistoricalRecord{
		rec("REWE Markt", "Expenses:Food", 2023, 1, 1),
	}, Options{})

	got, ok := idx.Infer("  REWE   Markt ")
	require.True(t, ok)
	assert.Equal(t, "Expenses:Food", got)
}

func TestInfer_SkipsEmptyPayees(t *testing.T) {
	idx := NewIndex([]model.HistoricalRecord{
		rec("   ", "Expenses:A", 2023, 1, 1),
	}, Options{})

	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Infer("")
	assert.False(t, ok)
}

func TestInferAt_IgnoresFutureHistory(t *testing.T) {
	idx := NewIndex([]model.HistoricalRecord{
		rec("ACME", "Expenses:Old", 2023, 1, 1),
		rec("ACME", "Expenses:New", 2023, 6, 1),
	}, Options{})

	got, ok := idx.InferAt("ACME", date(2023, 3, 1))
	require.True(t, ok)
	assert.Equal(t, "Expenses:Old", got)

	// Same-day history counts.
	got, ok = idx.InferAt("ACME", date(2023, 6, 1))
	require.True(t, ok)
	assert.Equal(t, "Expenses:New", got)

	// All history in the future: no match.
	_, ok = idx.InferAt("ACME", date(2022, 12, 31))
	assert.False(t, ok)
}
