package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manthansachdev12/Hackwave-pragyan/domain"
)

// MessageType defines the type of a message sent by a UI client
type MessageType string

// Supported client message types
const (
	MessageTypeUtterance MessageType = "utterance"
	MessageTypePing      MessageType = "ping"
)

// Error codes sent back in EventError payloads
const (
	ErrorCodeInvalidMessage   = "invalid_message"
	ErrorCodeNoActiveCall     = "no_active_call"
	ErrorCodeCallEnded        = "call_ended"
	ErrorCodeEmptyUtterance   = "empty_utterance"
	ErrorCodeTurnFailed       = "turn_failed"
	ErrorCodeUnsupportedFrame = "unsupported_frame"
)

// ClientMessage is a message received from a UI client
type ClientMessage struct {
	Type MessageType `json:"type"`
	Text string      `json:"text,omitempty"`
	Data string      `json:"data,omitempty"`
}

// ParseClientMessage decodes and validates an incoming message
func ParseClientMessage(messageBytes []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch msg.Type {
	case MessageTypeUtterance:
		msg.Text = strings.TrimSpace(msg.Text)
		if msg.Text == "" {
			return nil, errors.New("text is required")
		}
	case MessageTypePing:
	case "":
		return nil, errors.New("type is required")
	default:
		return nil, fmt.Errorf("unsupported message type: %s", msg.Type)
	}

	return &msg, nil
}

// CreateErrorEvent creates a standardized error event
func CreateErrorEvent(code, message string) domain.Event {
	return domain.NewEvent(domain.EventError, domain.ErrorData{Code: code, Message: message})
}

// CreatePongEvent echoes the ping payload back
func CreatePongEvent(data string) domain.Event {
	var payload interface{}
	if data != "" {
		payload = map[string]string{"data": data}
	}
	return domain.NewEvent(domain.EventPong, payload)
}

// turnErrorCode maps a failed turn to the code the UI switches on
func turnErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoActiveCall):
		return ErrorCodeNoActiveCall
	case errors.Is(err, domain.ErrCallEnded):
		return ErrorCodeCallEnded
	case errors.Is(err, domain.ErrEmptyTranscript):
		return ErrorCodeEmptyUtterance
	default:
		return ErrorCodeTurnFailed
	}
}
