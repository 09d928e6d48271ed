package socket

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		mt      int
		payload string
		want    Envelope
	}{
		{"raw text", websocket.TextMessage, "Hello", Envelope{Type: TypeToken, Data: "Hello"}},
		{"legacy done", websocket.TextMessage, `{"event":"done"}`, Envelope{Type: TypeControl, Event: EventDone}},
		{"legacy ready", websocket.TextMessage, `{"event":"ready"}`, Envelope{Type: TypeControl, Event: EventReady}},
		{"tagged token", websocket.TextMessage, `{"type":"token","id":"a","data":"{x}"}`, Envelope{Type: TypeToken, ID: "a", Data: "{x}"}},
		{"tagged control", websocket.TextMessage, `{"type":"control","event":"done","id":"a"}`, Envelope{Type: TypeControl, Event: EventDone, ID: "a"}},
		{"json number", websocket.TextMessage, "42", Envelope{Type: TypeToken, Data: "42"}},
		{"json object without event", websocket.TextMessage, `{"answer":"x"}`, Envelope{Type: TypeToken, Data: `{"answer":"x"}`}},
		{"unknown type", websocket.TextMessage, `{"type":"other","event":"done"}`, Envelope{Type: TypeToken, Data: `{"type":"other","event":"done"}`}},
		{"binary", websocket.BinaryMessage, `{"event":"done"}`, Envelope{Type: TypeToken, Data: `{"event":"done"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.mt, []byte(tt.payload)))
		})
	}
}
