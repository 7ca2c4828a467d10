package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeStart        = "start"
	TypeRestart      = "restart"
	TypeNext         = "next"
	TypeHint         = "hint"
	TypeAnswer       = "answer"
	TypeToggleTheme  = "toggle_theme"
	TypeRequestState = "request_state"
	TypePing         = "ping"

	// Server -> Client
	TypeState      = "state"
	TypeQuestion   = "question"
	TypeTick       = "tick"
	TypeResolved   = "resolved"
	TypeHintShown  = "hint_revealed"
	TypeFinished   = "finished"
	TypeStatsReset = "stats_reset"
	TypeError      = "error"
	TypePong       = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed message. A nil payload is omitted.
func NewMessage(msgType string, payload any) (Message, error) {
	msg := Message{Type: msgType}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return ErrEmptyPayload
	}
	return json.Unmarshal(m.Payload, v)
}

// Client Messages (incoming)

type AnswerPayload struct {
	Option string `json:"option"`
}

type ToggleThemePayload struct {
	Theme string `json:"theme"`
}

// Server Messages (outgoing)

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
