package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"soccer-forecasts/lib/osutil"
)

// AppendMode describes what AppendFile did to the destination.
type AppendMode int

const (
	// Created means the file did not exist and was written with a header.
	Created AppendMode = iota
	// Appended means the rows were added after the existing rows, the header is untouched.
	Appended
	// Reconciled means the new rows brought columns the file lacked, the file was
	// rewritten with the union of both headers.
	Reconciled
)

func (m AppendMode) String() string {
	switch m {
	case Created:
		return "created"
	case Appended:
		return "appended"
	case Reconciled:
		return "reconciled"
	}
	return fmt.Sprintf("AppendMode(%d)", int(m))
}

// WriteFile replaces `path` with the table, creating parent directories as needed.
// The content is written to a temporary file first, readers never observe a partial table.
func WriteFile(path string, t *Table) error {
	var buf bytes.Buffer
	err := t.WriteCSV(&buf)
	if err != nil {
		return err
	}
	return osutil.WriteFileAtomic(path, buf.Bytes())
}

// ReadFile reads a table previously written by WriteFile or AppendFile.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func readHeader(f *os.File) ([]string, error) {
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	return header, err
}

func endsWithNewline(f *os.File, size int64) (bool, error) {
	if size == 0 {
		return true, nil
	}
	last := make([]byte, 1)
	_, err := f.ReadAt(last, size-1)
	if err != nil {
		return false, err
	}
	return last[0] == '\n', nil
}

// AppendFile adds the rows of t to the table stored at `path`.
//
// When the file does not exist (or is empty) it is created with t's header. When every
// column of t is already in the file's header, the rows are appended in the file's
// column order and the header is left as is. Otherwise the file is rewritten with the
// union of both headers, existing rows keep their values and read as empty in the new
// columns.
func AppendFile(path string, t *Table) (AppendMode, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Created, WriteFile(path, t)
	}
	if err != nil {
		return 0, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, err
	}
	if stat.Size() == 0 {
		f.Close()
		return Created, WriteFile(path, t)
	}

	header, err := readHeader(f)
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("read existing header of %s: %w", path, err)
	}
	existingColumns := New(header...)

	if existingColumns.HasColumns(t.columns) {
		newline, err := endsWithNewline(f, stat.Size())
		f.Close()
		if err != nil {
			return 0, err
		}

		var buf bytes.Buffer
		if !newline {
			buf.WriteByte('\n')
		}
		err = t.WriteRowsCSV(&buf, existingColumns.columns)
		if err != nil {
			return 0, err
		}
		return Appended, appendBytes(path, buf.Bytes())
	}
	f.Close()

	existing, err := ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read existing rows of %s: %w", path, err)
	}
	existing.Concat(t)
	return Reconciled, WriteFile(path, existing)
}

// appendBytes issues a single write so that a failed append does not leave half a row.
func appendBytes(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
