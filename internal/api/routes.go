package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/entities"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
	"github.com/manthansachdev12/Hackwave-pragyan/internal/catalog"
	"github.com/manthansachdev12/Hackwave-pragyan/internal/websocket"
	"github.com/manthansachdev12/Hackwave-pragyan/usecase"
)

// CallService is the call controller as seen by the HTTP layer
type CallService interface {
	StartCall(ctx context.Context) (*entities.CallSession, error)
	EndCall() error
	Snapshot() entities.CallSession
	HandleUtterance(ctx context.Context, text string) (*usecase.TurnResult, error)
}

// VoiceService runs a full audio turn
type VoiceService interface {
	ProcessAudio(ctx context.Context, audio []byte, config repositories.AudioConfig) (*usecase.VoiceTurn, error)
}

// TokenIssuer signs room credentials
type TokenIssuer interface {
	Issue(identity, room string) (string, time.Time, error)
}

// Dependencies are the components the routes are served from. Hub may be
// nil, in which case /ws is not registered.
type Dependencies struct {
	Calls      CallService
	Voice      VoiceService
	Complaints repositories.ComplaintRepository
	Issuer     TokenIssuer
	Catalog    *catalog.Catalog
	Hub        *websocket.Hub
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies, logger *zap.Logger) {
	h := &handler{deps: deps, logger: logger, now: time.Now}

	// Health check
	e.GET("/health", h.health)

	// Credential issuer, kept at the root path the voice UI expects
	e.GET("/token/:identity/:room", h.issueToken)

	// API v1 routes
	v1 := e.Group("/api/v1")

	// Call APIs
	v1.POST("/calls", h.startCall)
	v1.GET("/calls/current", h.currentCall)
	v1.DELETE("/calls/current", h.endCall)
	v1.POST("/calls/current/utterances", h.utterance)
	v1.POST("/calls/current/audio", h.audioTurn)

	// Complaint APIs
	v1.GET("/complaints", h.listComplaints)
	v1.GET("/complaints/:id", h.getComplaint)
	v1.PATCH("/complaints/:id/status", h.updateStatus)

	// Catalog APIs
	v1.GET("/services", h.listServices)
	v1.GET("/emergency-contacts", h.listEmergencyContacts)

	// Live UI event feed
	if deps.Hub != nil {
		e.GET("/ws", func(c echo.Context) error {
			return websocket.HandleWebSocket(deps.Hub, deps.Calls, c, logger)
		})
	}
}
