package socket

import (
	"encoding/json"

	"github.com/gorilla/websocket"
)

const (
	TypeControl = "control"
	TypeToken   = "token"

	EventReady = "ready"
	EventDone  = "done"
	EventError = "error"
)

// Envelope is the tagged frame exchanged over the socket. Type tells control
// signals apart from answer text; ID names the question a frame belongs to.
type Envelope struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Data  string `json:"data,omitempty"`
}

func (e Envelope) IsToken() bool {
	return e.Type == TypeToken
}

// request is the outbound question frame.
type request struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// Decode turns an inbound frame into an Envelope. Frames without a type come
// from backends that predate the envelope: a JSON object carrying an event is
// a control frame and anything else is answer text.
func Decode(messageType int, payload []byte) Envelope {
	if messageType == websocket.TextMessage {
		var env Envelope
		if err := json.Unmarshal(payload, &env); err == nil {
			switch {
			case env.Type == TypeToken || env.Type == TypeControl:
				return env
			case env.Type == "" && env.Event != "":
				env.Type = TypeControl
				return env
			}
		}
	}
	return Envelope{Type: TypeToken, Data: string(payload)}
}
