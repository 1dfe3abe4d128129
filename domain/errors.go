package domain

import "errors"

// Sentinel errors shared across the usecase, adapter and API layers.
var (
	ErrComplaintNotFound       = errors.New("complaint not found")
	ErrInvalidStatusTransition = errors.New("invalid complaint status transition")
	ErrCallInProgress          = errors.New("call already in progress")
	ErrNoActiveCall            = errors.New("no active call")
	ErrCallEnded               = errors.New("call ended before the turn completed")
	ErrCredentialUnavailable   = errors.New("room credential unavailable")
	ErrEmptyTranscript         = errors.New("no speech detected in audio")
)
