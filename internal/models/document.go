package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Text is a loosely typed JSON field kept as display text. Strings are taken
// verbatim, numbers and booleans as written and null as empty; arrays and
// objects keep their compact JSON form.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*t = Text(buf.String())
	}
	return nil
}

// empty matches the values a browser would treat as falsy.
func (t Text) empty() bool {
	switch strings.TrimSpace(string(t)) {
	case "", "0", "false":
		return true
	}
	return false
}

// DocumentSummary is one entry of the backend document list. Every field is
// optional and may hold any JSON scalar.
type DocumentSummary struct {
	Title Text `json:"title,omitempty"`
	Type  Text `json:"type,omitempty"`
	Size  Text `json:"size,omitempty"`
}

// DocumentList is the backend list response.
type DocumentList struct {
	Documents []DocumentSummary `json:"documents"`
}

// TitleLabel falls back to "Document N" where n is the 1-based position.
func (d DocumentSummary) TitleLabel(n int) string {
	if !d.Title.empty() {
		return strings.TrimSpace(string(d.Title))
	}
	return fmt.Sprintf("Document %d", n)
}

func (d DocumentSummary) TypeLabel() string {
	if !d.Type.empty() {
		return strings.TrimSpace(string(d.Type))
	}
	return "Unknown type"
}

// SizeLabel reports the size in characters; absent or zero sizes are unknown.
func (d DocumentSummary) SizeLabel() string {
	if d.Size.empty() {
		return "Size unknown"
	}
	return strings.TrimSpace(string(d.Size)) + " chars"
}
