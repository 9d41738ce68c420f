package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/banklift-dev/banklift/internal/model"
)

// VolksbankParser parses CSV exports from Volksbank or GLS Bank online
// banking. The export is ISO-8859-1 and ';'-separated, and one booking
// can span several physical lines; a row is complete once its trailing
// Soll/Haben marker ("S" or "H") appears.
type VolksbankParser struct{}

const (
	volksbankDateLayout = "02.01.2006"

	vbColDate     = 0
	vbColPayee    = 3
	vbColPurpose  = 8
	vbColCurrency = 10
	vbColAmount   = 11
	vbColMark     = 12
	vbNumFields   = 13

	// The header block ends with the column-title line, recognizable
	// by its "Valuta" column.
	vbHeaderMarker = "Valuta"
)

// Format returns the parser name.
func (p *VolksbankParser) Format() string { return "volksbank" }

// DateLayout returns the date format used in the export.
func (p *VolksbankParser) DateLayout() string { return volksbankDateLayout }

// Parse reads a Volksbank CSV and returns the raw statement. The
// opening balance row (Anfangssaldo) is dropped, the closing balance
// row (Endsaldo) becomes Statement.Closing.
func (p *VolksbankParser) Parse(r io.Reader) (*model.Statement, error) {
	sc := bufio.NewScanner(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))

	stmt := &model.Statement{}
	inHeader := true
	collector := ""
	line := 0
	start := 0

	for sc.Scan() {
		line++
		text := sc.Text()

		if inHeader {
			if strings.Contains(text, vbHeaderMarker) {
				inHeader = false
			}
			continue
		}
		if collector == "" {
			if strings.TrimSpace(text) == "" {
				continue
			}
			start = line
		}
		collector += text + " "

		if !strings.Contains(collector, `"S"`) && !strings.Contains(collector, `"H"`) {
			continue
		}

		switch {
		case strings.Contains(collector, "Anfangssaldo"):
			// Opening balance carries no booking.
		case strings.Contains(collector, "Endsaldo"):
			closing, err := parseVolksbankClosing(collector, start)
			if err != nil {
				return nil, err
			}
			stmt.Closing = closing
		default:
			rec, err := parseVolksbankRow(collector, start)
			if err != nil {
				return nil, err
			}
			stmt.Records = append(stmt.Records, rec)
		}
		collector = ""
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading volksbank CSV: %w", err)
	}
	if collector != "" {
		return nil, fmt.Errorf("line %d: booking without Soll/Haben marker", start)
	}

	return stmt, nil
}

func parseVolksbankRow(raw string, line int) (model.RawRecord, error) {
	fields, err := splitVolksbank(raw, line)
	if err != nil {
		return model.RawRecord{}, err
	}

	return model.RawRecord{
		Line:     line,
		Date:     fields[vbColDate],
		Payee:    fields[vbColPayee],
		Amount:   signedAmount(fields[vbColAmount], fields[vbColMark]),
		Currency: fields[vbColCurrency],
		Note:     fields[vbColPurpose],
	}, nil
}

func parseVolksbankClosing(raw string, line int) (*model.RawBalance, error) {
	fields, err := splitVolksbank(raw, line)
	if err != nil {
		return nil, err
	}

	return &model.RawBalance{
		Line:   line,
		Date:   fields[vbColDate],
		Amount: signedAmount(fields[vbColAmount], fields[vbColMark]),
	}, nil
}

func splitVolksbank(raw string, line int) ([]string, error) {
	fields := strings.Split(raw, ";")
	if len(fields) < vbNumFields {
		return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, vbNumFields, len(fields))
	}
	for i, f := range fields {
		fields[i] = strings.TrimSpace(strings.ReplaceAll(f, `"`, ""))
	}
	return fields, nil
}

// signedAmount rewrites a German-formatted amount ("1.200,30") as a
// plain decimal string, negated for Soll (debit) rows.
// signedAmount("1.200,30", "S") = "-1200.30".
func signedAmount(value, mark string) string {
	v := strings.ReplaceAll(value, ".", "")
	v = strings.Replace(v, ",", ".", 1)
	if strings.Contains(mark, "S") {
		return "-" + v
	}
	return v
}
