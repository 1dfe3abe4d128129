package entities

import (
	"errors"
	"time"
)

// CallStatus represents the lifecycle state of a citizen call
type CallStatus string

const (
	CallStatusDisconnected CallStatus = "disconnected"
	CallStatusConnecting   CallStatus = "connecting"
	CallStatusConnected    CallStatus = "connected"
)

// CallSession is a point-in-time view of the citizen's call
type CallSession struct {
	Status    CallStatus `json:"status"`
	Room      string     `json:"room,omitempty"`
	Identity  string     `json:"identity,omitempty"`
	Token     string     `json:"token,omitempty"`
	ServerURL string     `json:"server_url,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// DisconnectedSession returns the initial, idle session
func DisconnectedSession() CallSession {
	return CallSession{Status: CallStatusDisconnected}
}

// IsExpired reports whether the call's room credential has expired at now
func (s CallSession) IsExpired(now time.Time) bool {
	return s.Status == CallStatusConnected && s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Validate checks that the room is present exactly when the call is not disconnected
func (s CallSession) Validate() error {
	switch s.Status {
	case CallStatusDisconnected:
		if s.Room != "" {
			return errors.New("disconnected session must not hold a room")
		}
		if s.Token != "" {
			return errors.New("disconnected session must not hold a token")
		}
	case CallStatusConnecting:
		if s.Room == "" {
			return errors.New("connecting session requires a room")
		}
	case CallStatusConnected:
		if s.Room == "" {
			return errors.New("connected session requires a room")
		}
		if s.Token == "" {
			return errors.New("connected session requires a token")
		}
	default:
		return errors.New("invalid call status")
	}
	return nil
}
