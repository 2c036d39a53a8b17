package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/inference-sim/queue-sim/sim/trace"
)

// Clocks round-trip exactly; jsoniter.ConfigFastest would cut them to 6 digits.
var json = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

// maxLineBytes bounds one JSON Lines record.
const maxLineBytes = 1 << 20

// WriteJSONL writes one JSON object per record, newline terminated.
func WriteJSONL(w io.Writer, log trace.Reader) error {
	stream := json.BorrowStream(w)
	defer json.ReturnStream(stream)

	return writeAll(log, func(rec trace.Record) error {
		stream.WriteVal(rec)
		stream.WriteRaw("\n")
		if stream.Error != nil {
			return stream.Error
		}
		return stream.Flush()
	})
}

// ReadJSONL parses records written by WriteJSONL. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]trace.Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []trace.Record
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var rec trace.Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
