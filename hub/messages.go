package hub

import (
	"encoding/json"
)

// EventType names a chat channel event
type EventType string

const (
	// inbound
	EventSendMessage     EventType = "send_message"
	EventRequestMessages EventType = "request_messages"

	// outbound
	EventReceiveMessage EventType = "receive_message"
	EventError          EventType = "error"
)

// Event is the wire frame of the chat channel
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent creates an event with the given type and payload
func NewEvent(eventType EventType, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:    eventType,
		Payload: payloadBytes,
	}, nil
}

// ErrorPayload is sent back to the originating connection only
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrorCodeBadRequest         = "BadRequest"
	ErrorCodeStorageUnavailable = "StorageUnavailable"
	ErrorCodePersistenceFailed  = "PersistenceFailed"
)
