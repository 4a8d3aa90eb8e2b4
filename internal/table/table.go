package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Table is a column-ordered set of text rows. Columns are only ever added, appending
// a record with unseen fields extends the column set (outer union) and earlier rows
// read as empty in the new columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

func New(columns ...string) *Table {
	t := &Table{index: map[string]int{}}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// AddColumn adds a column if it does not exist yet and returns its position.
func (t *Table) AddColumn(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	t.columns = append(t.columns, name)
	t.index[name] = len(t.columns) - 1
	return len(t.columns) - 1
}

func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumns reports whether every one of `columns` is already part of the table.
func (t *Table) HasColumns(columns []string) bool {
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			return false
		}
	}
	return true
}

func (t *Table) Append(r Record) {
	row := make([]string, len(t.columns), len(t.columns)+len(r.Fields))
	for _, f := range r.Fields {
		i := t.AddColumn(f)
		if i >= len(row) {
			row = append(row, make([]string, i-len(row)+1)...)
		}
		row[i] = r.Values[f]
	}
	t.rows = append(t.rows, row)
}

// Concat appends every row of other, unioning the column sets.
func (t *Table) Concat(other *Table) {
	for _, c := range other.columns {
		t.AddColumn(c)
	}
	for i := range other.rows {
		t.Append(other.Record(i))
	}
}

// Record returns row i keyed by column name.
func (t *Table) Record(i int) Record {
	r := NewRecord()
	row := t.rows[i]
	for ci, c := range t.columns {
		value := ""
		if ci < len(row) {
			value = row[ci]
		}
		r.Set(c, value)
	}
	return r
}

// project renders row i in the order of `columns`, columns the table lacks are empty.
func (t *Table) project(i int, columns []string) []string {
	row := t.rows[i]
	out := make([]string, len(columns))
	for oi, c := range columns {
		ci, ok := t.index[c]
		if ok && ci < len(row) {
			out[oi] = row[ci]
		}
	}
	return out
}

// WriteCSV writes the header followed by every row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	err := cw.Write(t.columns)
	if err != nil {
		return err
	}
	return t.writeRows(cw, t.columns)
}

// WriteRowsCSV writes the rows only, laid out in the order of `columns`.
func (t *Table) WriteRowsCSV(w io.Writer, columns []string) error {
	return t.writeRows(csv.NewWriter(w), columns)
}

func (t *Table) writeRows(cw *csv.Writer, columns []string) error {
	for i := range t.rows {
		err := cw.Write(t.project(i, columns))
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var ErrNoHeader = errors.New("csv has no header row")

// ReadCSV reads a table whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := New(header...)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) > len(t.columns) {
			row = row[:len(t.columns)]
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}
