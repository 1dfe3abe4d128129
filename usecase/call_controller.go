package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/entities"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

const (
	roomPrefix = "municipal-call-"
	// maxHistory bounds the turns sent to the backend; the oldest go first
	maxHistory = 40
)

// EventPublisher delivers events to connected UI clients
type EventPublisher interface {
	Publish(event domain.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.Event) {}

// TurnResult is the outcome of one conversation turn
type TurnResult struct {
	Transcript string                `json:"transcript"`
	Reply      string                `json:"reply"`
	Complaints []*entities.Complaint `json:"complaints"`
}

// CallControllerConfig holds the call settings
type CallControllerConfig struct {
	Identity            string        // identity the credential is requested for
	ServerURL           string        // voice room server handed to the UI
	TokenTTL            time.Duration // how long a call may last before its credential expires
	TokenRequestTimeout time.Duration
	BackendTimeout      time.Duration
}

func (c CallControllerConfig) withDefaults() CallControllerConfig {
	if c.Identity == "" {
		c.Identity = "citizen-user"
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = time.Hour
	}
	if c.TokenRequestTimeout <= 0 {
		c.TokenRequestTimeout = 5 * time.Second
	}
	if c.BackendTimeout <= 0 {
		c.BackendTimeout = 15 * time.Second
	}
	return c
}

// CallController owns the citizen's call session and its conversation.
// Each call is identified internally by an epoch; ending a call bumps the
// epoch and cancels the call context, so late credential or backend results
// are recognized and discarded.
type CallController struct {
	credentials repositories.CredentialProvider
	backend     repositories.ConversationalBackend
	complaints  repositories.ComplaintRepository
	extractor   ComplaintExtractor
	events      EventPublisher
	config      CallControllerConfig
	logger      *zap.Logger
	newRoom     func() string
	now         func() time.Time

	// turnMu serializes conversation turns; mu guards everything below it
	turnMu  sync.Mutex
	mu      sync.Mutex
	session entities.CallSession
	epoch   uint64
	callCtx context.Context
	cancel  context.CancelFunc
	history []repositories.ChatMessage
}

// CallControllerOption configures a CallController
type CallControllerOption func(*CallController)

// WithExtractor replaces the tag-based complaint extractor
func WithExtractor(extractor ComplaintExtractor) CallControllerOption {
	return func(c *CallController) {
		c.extractor = extractor
	}
}

// WithEventPublisher sets where call and complaint events are published
func WithEventPublisher(events EventPublisher) CallControllerOption {
	return func(c *CallController) {
		c.events = events
	}
}

// WithRoomNamer overrides room name generation
func WithRoomNamer(newRoom func() string) CallControllerOption {
	return func(c *CallController) {
		c.newRoom = newRoom
	}
}

// WithClock overrides the controller clock
func WithClock(now func() time.Time) CallControllerOption {
	return func(c *CallController) {
		c.now = now
	}
}

// NewRoomName returns a fresh room name with 8 hex characters of randomness
func NewRoomName() string {
	return roomPrefix + uuid.New().String()[:8]
}

// NewCallController creates a controller with no active call
func NewCallController(
	credentials repositories.CredentialProvider,
	backend repositories.ConversationalBackend,
	complaints repositories.ComplaintRepository,
	config CallControllerConfig,
	logger *zap.Logger,
	opts ...CallControllerOption,
) *CallController {
	c := &CallController{
		credentials: credentials,
		backend:     backend,
		complaints:  complaints,
		extractor:   NewTaggedComplaintExtractor(logger),
		events:      noopPublisher{},
		config:      config.withDefaults(),
		logger:      logger,
		newRoom:     NewRoomName,
		now:         time.Now,
		session:     entities.DisconnectedSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartCall moves disconnected → connecting → connected. If the credential
// cannot be obtained the session returns to disconnected and the error wraps
// domain.ErrCredentialUnavailable.
func (c *CallController) StartCall(ctx context.Context) (*entities.CallSession, error) {
	c.mu.Lock()
	if c.session.Status != entities.CallStatusDisconnected {
		c.mu.Unlock()
		return nil, domain.ErrCallInProgress
	}

	c.epoch++
	epoch := c.epoch
	c.callCtx, c.cancel = context.WithCancel(context.Background())
	callCtx := c.callCtx
	c.history = nil
	c.session = entities.CallSession{
		Status:   entities.CallStatusConnecting,
		Room:     c.newRoom(),
		Identity: c.config.Identity,
	}
	room := c.session.Room
	connecting := c.session
	c.mu.Unlock()

	c.publishStatus(connecting)
	c.logger.Info("Starting call", zap.String("room", room), zap.String("identity", c.config.Identity))

	// Ending the call while connecting aborts the credential request
	reqCtx, reqCancel := context.WithTimeout(ctx, c.config.TokenRequestTimeout)
	stop := context.AfterFunc(callCtx, reqCancel)
	token, err := c.credentials.RequestToken(reqCtx, c.config.Identity, room)
	stop()
	reqCancel()

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.logger.Info("Call ended while connecting", zap.String("room", room))
		return nil, domain.ErrCallEnded
	}

	if err != nil {
		c.resetLocked()
		c.mu.Unlock()

		c.logger.Error("Failed to obtain room credential", zap.String("room", room), zap.Error(err))
		c.publishStatus(entities.DisconnectedSession())
		return nil, fmt.Errorf("%w: %w", domain.ErrCredentialUnavailable, err)
	}

	now := c.now()
	expiresAt := now.Add(c.config.TokenTTL)
	c.session.Status = entities.CallStatusConnected
	c.session.Token = token
	c.session.ServerURL = c.config.ServerURL
	c.session.StartedAt = &now
	c.session.ExpiresAt = &expiresAt
	connected := c.session
	c.mu.Unlock()

	c.logger.Info("Call connected", zap.String("room", room), zap.Time("expires_at", expiresAt))
	c.publishStatus(connected)
	return &connected, nil
}

// EndCall returns the session to disconnected and abandons any in-flight
// credential or backend request.
func (c *CallController) EndCall() error {
	c.mu.Lock()
	if c.session.Status == entities.CallStatusDisconnected {
		c.mu.Unlock()
		return domain.ErrNoActiveCall
	}
	room := c.session.Room
	c.resetLocked()
	c.mu.Unlock()

	c.logger.Info("Call ended", zap.String("room", room))
	c.publishStatus(entities.DisconnectedSession())
	return nil
}

// EndIfExpired ends a connected call whose credential has expired at now
func (c *CallController) EndIfExpired(now time.Time) bool {
	c.mu.Lock()
	if !c.session.IsExpired(now) {
		c.mu.Unlock()
		return false
	}
	room := c.session.Room
	c.resetLocked()
	c.mu.Unlock()

	c.logger.Info("Call credential expired, ending call", zap.String("room", room))
	c.publishStatus(entities.DisconnectedSession())
	return true
}

// Snapshot returns a copy of the current session
func (c *CallController) Snapshot() entities.CallSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// HandleUtterance runs one conversation turn for the active call: the
// citizen's text goes to the backend, complaints found in the reply are
// filed, and the spoken reply is returned with the complaint IDs filled in.
func (c *CallController) HandleUtterance(ctx context.Context, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyTranscript
	}

	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	c.mu.Lock()
	if c.session.Status != entities.CallStatusConnected {
		c.mu.Unlock()
		return nil, domain.ErrNoActiveCall
	}
	epoch := c.epoch
	callCtx := c.callCtx
	room := c.session.Room
	c.history = append(c.history, repositories.ChatMessage{Role: repositories.UserRole, Content: text})
	if len(c.history) > maxHistory {
		c.history = c.history[len(c.history)-maxHistory:]
	}
	conversation := make([]repositories.ChatMessage, 0, len(c.history)+1)
	conversation = append(conversation, repositories.ChatMessage{Role: repositories.SystemRole, Content: AssistantSystemPrompt})
	conversation = append(conversation, c.history...)
	c.mu.Unlock()

	turnCtx, cancel := context.WithTimeout(callCtx, c.config.BackendTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	reply, err := c.backend.Generate(turnCtx, conversation)

	c.mu.Lock()
	if c.epoch != epoch || c.session.Status != entities.CallStatusConnected {
		c.mu.Unlock()
		c.logger.Info("Discarding reply for ended call", zap.String("room", room))
		return nil, domain.ErrCallEnded
	}
	if err != nil {
		c.dropLastUserTurnLocked(text)
		c.mu.Unlock()
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	spoken, intents := c.extractor.Extract(reply.Content)
	created := make([]*entities.Complaint, 0, len(intents))
	for _, intent := range intents {
		complaint, err := c.complaints.Submit(ctx, intent.Service, intent.Description, intent.Location)
		if err != nil {
			c.logger.Error("Failed to file complaint", zap.String("room", room), zap.Error(err))
			continue
		}
		created = append(created, complaint)
	}
	spoken = fillComplaintIDs(spoken, created)
	c.history = append(c.history, repositories.ChatMessage{Role: repositories.AssistantRole, Content: spoken})
	c.mu.Unlock()

	for _, complaint := range created {
		c.events.Publish(domain.NewEvent(domain.EventComplaintSubmitted, complaint))
	}

	c.logger.Info("Turn completed",
		zap.String("room", room),
		zap.Int("complaints", len(created)),
		zap.Int("history_length", len(conversation)))

	return &TurnResult{Transcript: text, Reply: spoken, Complaints: created}, nil
}

// resetLocked must be called with mu held
func (c *CallController) resetLocked() {
	c.epoch++
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = nil
	c.callCtx = nil
	c.history = nil
	c.session = entities.DisconnectedSession()
}

func (c *CallController) dropLastUserTurnLocked(text string) {
	if n := len(c.history); n > 0 && c.history[n-1].Role == repositories.UserRole && c.history[n-1].Content == text {
		c.history = c.history[:n-1]
	}
}

func (c *CallController) publishStatus(session entities.CallSession) {
	c.events.Publish(domain.NewEvent(domain.EventCallStatus, session))
}

// fillComplaintIDs replaces the ID placeholder with the filed IDs, or
// appends a sentence naming them when the reply did not mention them
func fillComplaintIDs(spoken string, created []*entities.Complaint) string {
	ids := make([]string, len(created))
	for i, complaint := range created {
		ids[i] = complaint.ID
	}
	joined := strings.Join(ids, " and ")

	if strings.Contains(spoken, entities.ComplaintIDPlaceholder) {
		if joined == "" {
			joined = "not available yet"
		}
		return strings.ReplaceAll(spoken, entities.ComplaintIDPlaceholder, joined)
	}

	switch len(ids) {
	case 0:
		return spoken
	case 1:
		return strings.TrimSpace(spoken + " Your complaint ID is " + joined + ".")
	default:
		return strings.TrimSpace(spoken + " Your complaint IDs are " + joined + ".")
	}
}
