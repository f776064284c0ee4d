// Package csvimport loads spreadsheet exports, adapts each row into a game
// draft and drives the drafts into a repository.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gameshelf/gameshelf/pkg/coerce"
)

// RawRow maps a column name to its raw cell. Missing columns read as null.
type RawRow map[string]coerce.Cell

// Get returns the cell for column, or coerce.Null.
func (r RawRow) Get(column string) coerce.Cell {
	if c, ok := r[column]; ok {
		return c
	}
	return coerce.Null
}

// naValues are the cell contents treated as missing, matching what common
// spreadsheet/dataframe exports write for empty cells.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// normalizeCell applies the sentinel rules: missing markers become null and
// a lone "x"/"X" becomes true.
func normalizeCell(raw string) coerce.Cell {
	if _, ok := naValues[raw]; ok {
		return coerce.Null
	}
	if raw == "x" || raw == "X" {
		return coerce.Bool(true)
	}
	return coerce.String(raw)
}

// Load reads a header-first CSV document into rows, in file order.
func Load(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Hand-edited spreadsheets carry bare quotes inside titles (12" Edition).
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []RawRow{}, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	rows := []RawRow{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", len(rows)+2, err)
		}

		row := make(RawRow, len(header))
		for i, column := range header {
			if column == "" {
				continue
			}
			if i < len(record) {
				row[column] = normalizeCell(record[i])
			} else {
				row[column] = coerce.Null
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
