// Package export persists event logs as JSON Lines or CSV and reads them back.
// Output is a pure function of the records, so identical logs produce
// byte-identical files.
package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queue-sim/sim/trace"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// FormatFor picks a format from a file extension. Anything other than .csv
// is written as JSON Lines.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSONL
}

// WriteFile writes log to path in the format implied by its extension.
func WriteFile(path string, log trace.Reader) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	w := bufio.NewWriter(f)
	switch FormatFor(path) {
	case FormatCSV:
		err = WriteCSV(w, log)
	default:
		err = WriteJSONL(w, log)
	}
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	logrus.Infof("Wrote %d records to %s", log.Len(), path)
	return nil
}

// ReadFile loads a log written by WriteFile.
func ReadFile(path string) (trace.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []trace.Record
	switch FormatFor(path) {
	case FormatCSV:
		records, err = ReadCSV(f)
	default:
		records, err = ReadJSONL(f)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return trace.FromRecords(records)
}

// writeAll runs write for each record, stopping at the first error.
func writeAll(log trace.Reader, write func(trace.Record) error) error {
	for i, rec := range log.All() {
		if err := write(rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
