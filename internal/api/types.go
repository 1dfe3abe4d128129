package api

import (
	"time"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/entities"
)

// TokenResponse is returned by the credential endpoint
type TokenResponse struct {
	Token string `json:"token"`
}

// TokenErrorResponse is the credential endpoint's failure body
type TokenErrorResponse struct {
	Error string `json:"error"`
}

// UtteranceRequest carries one citizen turn as text
type UtteranceRequest struct {
	Text string `json:"text"`
}

// VoiceTurnResponse is the result of an audio turn. AudioData is the
// base64-encoded synthesized reply and is empty when synthesis failed.
type VoiceTurnResponse struct {
	Transcript string                `json:"transcript"`
	Reply      string                `json:"reply"`
	Complaints []*entities.Complaint `json:"complaints"`
	AudioData  string                `json:"audio_data,omitempty"`
	AudioBytes int                   `json:"audio_bytes"`
}

// ComplaintListResponse is a page of the complaint registry
type ComplaintListResponse struct {
	Complaints []*entities.Complaint `json:"complaints"`
	Total      int                   `json:"total"`
}

// StatusUpdateRequest advances a complaint's status
type StatusUpdateRequest struct {
	Status entities.ComplaintStatus `json:"status"`
}

// HealthResponse reports liveness and the call state
type HealthResponse struct {
	Status     string              `json:"status"`
	Service    string              `json:"service"`
	CallStatus entities.CallStatus `json:"call_status"`
	Complaints int                 `json:"complaints"`
	Time       time.Time           `json:"time"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
