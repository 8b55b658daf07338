package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// utf8BOM is stripped from the first header cell; several upstream
// exports are written with a BOM ("utf-8-sig").
const utf8BOM = "\uFEFF"

// ReadCSV parses CSV content with a header row into a Table.
// Short rows are padded with nulls, long rows truncated.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: missing header row")
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	if err := validate(header); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	t := New(header...)
	for _, rec := range records[1:] {
		t.Append(rec)
	}
	return t, nil
}

// ReadFile reads a CSV file into a Table.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes the table, header first, to w.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFileAtomic writes the table to path via a temp file in the same
// directory plus rename, so concurrent readers never observe a partial
// snapshot.
func (t *Table) WriteFileAtomic(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := t.WriteCSV(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
