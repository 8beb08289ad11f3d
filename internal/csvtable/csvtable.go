// Package csvtable loads small delimited fixture tables for tests.
package csvtable

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Split cuts raw at every sep. Empty input yields no fields; a trailing
// separator does not produce a trailing empty field.
func Split(raw string, sep string) []string {
	if raw == "" {
		return nil
	}
	out := strings.Split(raw, sep)
	if out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// Floats parses an underscore separated list such as "0_-100_0_-99".
// Unparsable fields are an error.
func Floats(raw string) ([]float64, error) {
	parts := Split(raw, "_")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("csvtable: field %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Table reads every record of a comma separated text. Rows may have differing
// field counts; '#' starts a comment line.
func Table(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvtable: %w", err)
	}
	return rows, nil
}

// Project treats the first record as a header and returns the remaining rows
// restricted to keys, in key order. Unknown keys and short rows are errors.
func Project(r io.Reader, keys ...string) ([][]string, error) {
	rows, err := Table(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csvtable: missing header")
	}
	header := make(map[string]int, len(rows[0]))
	for i, k := range rows[0] {
		header[k] = i
	}
	idx := make([]int, len(keys))
	for i, k := range keys {
		j, ok := header[k]
		if !ok {
			return nil, fmt.Errorf("csvtable: unknown column %q", k)
		}
		idx[i] = j
	}
	out := make([][]string, 0, len(rows)-1)
	for line, row := range rows[1:] {
		rec := make([]string, len(idx))
		for i, j := range idx {
			if j >= len(row) {
				return nil, fmt.Errorf("csvtable: row %d has no column %q", line+2, keys[i])
			}
			rec[i] = row[j]
		}
		out = append(out, rec)
	}
	return out, nil
}

// ProjectFile is Project over a file path.
func ProjectFile(path string, keys ...string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Project(f, keys...)
}
