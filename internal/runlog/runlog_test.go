package runlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry() Entry {
	return Entry{
		Timestamp: time.Date(2020, 11, 2, 9, 30, 0, 0, time.UTC),
		Source:    "giro.csv",
		Format:    "volksbank",
		Rows:      4,
		Matched:   3,
		Unmatched: 1,
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	row := MarshalEntry(entry())
	got, err := UnmarshalEntry(row)
	require.NoError(t, err)
	assert.Equal(t, entry(), got)
}

func TestUnmarshal_BadTimestamp(t *testing.T) {
	row := MarshalEntry(entry())
	row[0] = "yesterday"
	_, err := UnmarshalEntry(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")
}

func TestUnmarshal_WrongFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"a", "b"})
	assert.Error(t, err)
}

func TestAppendAndLoad(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Append(dir, entry()))
	second := entry()
	second.Source = "giro2.csv"
	require.NoError(t, Append(dir, second))

	entries, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "giro.csv", entries[0].Source)
	assert.Equal(t, "giro2.csv", entries[1].Source)
}

func TestLoad_MissingLog(t *testing.T) {
	entries, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}
