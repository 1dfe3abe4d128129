package domain

import "time"

// EventType identifies a message pushed to UI clients
type EventType string

const (
	EventCallStatus         EventType = "call_status"
	EventComplaintSubmitted EventType = "complaint_submitted"
	EventAssistantReply     EventType = "assistant_reply"
	EventPong               EventType = "pong"
	EventError              EventType = "error"
)

// Event is the envelope for every server-to-UI message
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time
func NewEvent(eventType EventType, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      data,
	}
}

// ErrorData is the payload of an EventError
type ErrorData struct {
	Code    string `json:"error"`
	Message string `json:"message,omitempty"`
}
