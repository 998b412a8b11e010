package ws

import (
	"encoding/json"
	"time"
)

// MessageType constants for the question feed protocol.
const (
	// Client -> Server
	TypePing = "ping"

	// Server -> Client
	TypeHello           = "hello"
	TypeQuestionCreated = "question_created"
	TypeQuestionEdited  = "question_edited"
	TypePong            = "pong"
	TypeError           = "error"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// HelloPayload is sent once after a client connects.
type HelloPayload struct {
	ConnectionID string `json:"connection_id"`
}

// QuestionPayload describes a changed question. Answers are never sent.
type QuestionPayload struct {
	ID          int       `json:"id"`
	Topic       string    `json:"topic"`
	Question    string    `json:"question"`
	LastUpdated time.Time `json:"last_updated"`
}

// ErrorPayload reports a protocol problem to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage marshals payload into a typed message.
func NewMessage(msgType string, payload interface{}) (Message, error) {
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
