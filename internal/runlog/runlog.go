// Package runlog keeps a flat-file record of conversion runs.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time
	Source    string // statement file converted
	Format    string
	Rows      int
	Matched   int
	Unmatched int
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,source,format,rows,matched,unmatched"

const (
	numFields = 6
	logFile   = "run-log.csv"

	colTimestamp = 0
	colSource    = 1
	colFormat    = 2
	colRows      = 3
	colMatched   = 4
	colUnmatched = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSource] = e.Source
	row[colFormat] = e.Format
	row[colRows] = strconv.Itoa(e.Rows)
	row[colMatched] = strconv.Itoa(e.Matched)
	row[colUnmatched] = strconv.Itoa(e.Unmatched)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	counts := make([]int, 3)
	for i, col := range []int{colRows, colMatched, colUnmatched} {
		counts[i], err = strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
	}

	return Entry{
		Timestamp: ts,
		Source:    record[colSource],
		Format:    record[colFormat],
		Rows:      counts[0],
		Matched:   counts[1],
		Unmatched: counts[2],
	}, nil
}

// Append writes an entry to <dir>/run-log.csv, creating the file and
// header if needed.
func Append(dir string, e Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	if needsHeader {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(MarshalEntry(e)); err != nil {
		return fmt.Errorf("writing run log row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// Read reads all entries from a run-log.csv reader.
func Read(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Load reads <dir>/run-log.csv. A missing log is an empty log.
func Load(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, logFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()
	return Read(f)
}
