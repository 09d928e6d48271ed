package sse

import (
	"bufio"
	"io"
	"strings"
)

const maxLineBytes = 1 << 20

// Event is one dispatched text/event-stream event. Name is "message" when the
// stream did not name it.
type Event struct {
	Name string
	Data string
	ID   string
}

// Reader decodes a text/event-stream body incrementally.
type Reader struct {
	sc *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	return &Reader{sc: sc}
}

// Next blocks until the next event is complete. It returns io.EOF when the
// stream ends; a trailing event without its blank line is discarded.
func (r *Reader) Next() (Event, error) {
	var (
		name    string
		id      string
		data    strings.Builder
		hasData bool
	)
	for r.sc.Scan() {
		line := r.sc.Text()
		if line == "" {
			if !hasData && name == "" {
				continue
			}
			if name == "" {
				name = "message"
			}
			return Event{Name: name, Data: data.String(), ID: id}, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		case "id":
			id = value
		}
	}
	if err := r.sc.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}
