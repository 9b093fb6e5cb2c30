package sse

import (
	"bufio"
	"io"
	"strings"
)

// Record is one blank-line-terminated SSE record.
type Record struct {
	Event string
	Data  string
	ID    string
}

// MaxLineSize caps a single line of the stream. A longer line ends the read
// with bufio.ErrTooLong; the server never sends one, since replies arrive as
// many small textChunk records.
const MaxLineSize = 4 * 1024 * 1024

// Reader splits an event stream into records.
type Reader struct {
	scanner *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Reader{scanner: sc}
}

// Next returns the next record that carries data. It returns io.EOF when the
// stream ends; a trailing record without its blank line is still delivered.
func (r *Reader) Next() (Record, error) {
	var (
		rec     Record
		data    []string
		hasData bool
	)
	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")
		if line == "" {
			if hasData {
				rec.Data = strings.Join(data, "\n")
				return rec, nil
			}
			rec = Record{}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
			hasData = true
		case "event":
			rec.Event = value
		case "id":
			rec.ID = value
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}
	if hasData {
		rec.Data = strings.Join(data, "\n")
		return rec, nil
	}
	return Record{}, io.EOF
}
