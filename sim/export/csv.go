package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/inference-sim/queue-sim/sim/trace"
)

var csvHeader = []string{"seq", "clock", "subject", "id", "event", "ref"}

// WriteCSV writes a header row followed by one row per record. Clocks use the
// shortest representation that parses back to the same float.
func WriteCSV(w io.Writer, log trace.Reader) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	err := writeAll(log, func(rec trace.Record) error {
		return cw.Write([]string{
			strconv.Itoa(rec.Seq),
			strconv.FormatFloat(rec.Clock, 'g', -1, 64),
			string(rec.Subject),
			strconv.Itoa(rec.ID),
			string(rec.Event),
			strconv.Itoa(rec.Ref),
		})
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses records written by WriteCSV.
func ReadCSV(r io.Reader) ([]trace.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range csvHeader {
		if header[i] != h {
			return nil, fmt.Errorf("unexpected csv header %v", header)
		}
	}

	var records []trace.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		rec, err := parseRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
}

func parseRow(row []string) (trace.Record, error) {
	var rec trace.Record
	var err error
	if rec.Seq, err = strconv.Atoi(row[0]); err != nil {
		return rec, fmt.Errorf("seq: %w", err)
	}
	if rec.Clock, err = strconv.ParseFloat(row[1], 64); err != nil {
		return rec, fmt.Errorf("clock: %w", err)
	}
	rec.Subject = trace.SubjectKind(row[2])
	if rec.ID, err = strconv.Atoi(row[3]); err != nil {
		return rec, fmt.Errorf("id: %w", err)
	}
	rec.Event = trace.EventKind(row[4])
	if rec.Ref, err = strconv.Atoi(row[5]); err != nil {
		return rec, fmt.Errorf("ref: %w", err)
	}
	return rec, nil
}
