// Package csvio reads raw delimited inputs into records and writes cube
// outputs back out. Reading tolerates a UTF-8 BOM (spreadsheet exports often
// carry one) by decoding through an x/text transform; writing renders the
// loosely typed record values deterministically.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"smartsales/pkg/records"
)

// ReadOptions tunes raw input parsing. The zero value reads standard
// comma-separated files.
type ReadOptions struct {
	Comma      rune // field delimiter, ',' when zero
	LazyQuotes bool // accept bare quotes inside unquoted fields
}

// Read loads a delimited file: the first row is the header, every following
// row becomes a Record keyed by header name. Short rows leave trailing
// columns absent; values stay strings for the scrub/normalize stages.
func Read(path string, o ReadOptions) ([]string, []records.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	if o.Comma != 0 {
		reader.Comma = o.Comma
	}
	reader.LazyQuotes = o.LazyQuotes
	reader.FieldsPerRecord = -1 // tolerate ragged rows; normalization decides

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("parse %s: missing header row", path)
	}

	header := raw[0]
	rows := make([]records.Record, 0, len(raw)-1)
	for _, line := range raw[1:] {
		rec := make(records.Record, len(header))
		for i, col := range header {
			if i < len(line) {
				rec[col] = line[i]
			}
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

// Write renders records as a delimited file with the given column order,
// creating parent directories as needed.
func Write(path string, columns []string, rows []records.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}
	line := make([]string, len(columns))
	for i, rec := range rows {
		for j, col := range columns {
			line[j] = FormatValue(rec[col])
		}
		if err := w.Write(line); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i, path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// FormatValue renders a record value for delimited output. Floats use the
// shortest round-trip form; id lists are joined with ";" so they survive the
// field delimiter unquoted.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []int64:
		parts := make([]string, len(t))
		for i, id := range t {
			parts[i] = strconv.FormatInt(id, 10)
		}
		return strings.Join(parts, ";")
	default:
		return fmt.Sprint(t)
	}
}
