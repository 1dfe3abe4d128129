package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/manthansachdev12/Hackwave-pragyan/adapters"
	"github.com/manthansachdev12/Hackwave-pragyan/domain"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/entities"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

type fakeCredentials struct {
	token string
	err   error
	block bool
	calls []string
}

func (f *fakeCredentials) RequestToken(ctx context.Context, identity, room string) (string, error) {
	f.calls = append(f.calls, identity+"/"+room)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.token, f.err
}

type fakeBackend struct {
	mu      sync.Mutex
	reply   string
	err     error
	started chan struct{}
	release chan struct{}
	seen    [][]repositories.ChatMessage
}

func (f *fakeBackend) Generate(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatMessage, error) {
	f.mu.Lock()
	f.seen = append(f.seen, history)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return repositories.ChatMessage{}, f.err
	}
	return repositories.ChatMessage{Role: repositories.AssistantRole, Content: f.reply}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingPublisher) Publish(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingPublisher) count(eventType domain.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

const filedReply = "Your complaint about water supply at Sector 15 is registered. Your complaint ID is {complaint_id}.\n" +
	`[[COMPLAINT {"service":"water supply","description":"No water for 2 days","location":"Sector 15"}]]`

type controllerFixture struct {
	controller  *CallController
	credentials *fakeCredentials
	backend     *fakeBackend
	complaints  *adapters.MemoryComplaintRepository
	events      *recordingPublisher
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	clock := func() time.Time { return time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC) }

	f := &controllerFixture{
		credentials: &fakeCredentials{token: "signed-jwt"},
		backend:     &fakeBackend{reply: "Namaste! How can I help?"},
		complaints:  adapters.NewMemoryComplaintRepository(logger, adapters.WithComplaintClock(clock)),
		events:      &recordingPublisher{},
	}
	f.controller = NewCallController(f.credentials, f.backend, f.complaints,
		CallControllerConfig{ServerURL: "wss://voice.example.com", TokenTTL: time.Hour},
		logger,
		WithEventPublisher(f.events),
		WithClock(clock),
	)
	return f
}

func TestCallController_StartAndEndCall(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()

	session, err := f.controller.StartCall(ctx)
	if err != nil {
		t.Fatalf("StartCall failed: %v", err)
	}

	if session.Status != entities.CallStatusConnected {
		t.Errorf("Expected connected, got %s", session.Status)
	}
	if !strings.HasPrefix(session.Room, "municipal-call-") || len(session.Room) != len("municipal-call-")+8 {
		t.Errorf("Unexpected room name %q", session.Room)
	}
	if session.Token != "signed-jwt" || session.ServerURL != "wss://voice.example.com" {
		t.Errorf("Unexpected session %+v", session)
	}
	if err := session.Validate(); err != nil {
		t.Errorf("Connected session should be valid: %v", err)
	}
	if len(f.credentials.calls) != 1 || !strings.HasPrefix(f.credentials.calls[0], "citizen-user/municipal-call-") {
		t.Errorf("Unexpected credential requests %v", f.credentials.calls)
	}

	if _, err := f.controller.StartCall(ctx); !errors.Is(err, domain.ErrCallInProgress) {
		t.Errorf("Expected ErrCallInProgress, got %v", err)
	}

	if err := f.controller.EndCall(); err != nil {
		t.Fatalf("EndCall failed: %v", err)
	}

	snapshot := f.controller.Snapshot()
	if snapshot.Status != entities.CallStatusDisconnected || snapshot.Room != "" {
		t.Errorf("Expected disconnected session without room, got %+v", snapshot)
	}

	if err := f.controller.EndCall(); !errors.Is(err, domain.ErrNoActiveCall) {
		t.Errorf("Expected ErrNoActiveCall, got %v", err)
	}

	// connecting, connected, disconnected
	if n := f.events.count(domain.EventCallStatus); n != 3 {
		t.Errorf("Expected 3 call_status events, got %d", n)
	}
}

func TestCallController_CredentialFailure(t *testing.T) {
	f := newControllerFixture(t)
	f.credentials.err = errors.New("connection refused")

	_, err := f.controller.StartCall(context.Background())
	if !errors.Is(err, domain.ErrCredentialUnavailable) {
		t.Fatalf("Expected ErrCredentialUnavailable, got %v", err)
	}

	snapshot := f.controller.Snapshot()
	if snapshot.Status != entities.CallStatusDisconnected || snapshot.Room != "" {
		t.Errorf("Expected disconnected session without room, got %+v", snapshot)
	}

	count, _ := f.complaints.Count(context.Background())
	if count != 0 {
		t.Errorf("Expected no complaints, got %d", count)
	}

	// The controller recovers and can start again
	f.credentials.err = nil
	if _, err := f.controller.StartCall(context.Background()); err != nil {
		t.Errorf("Expected retry to succeed, got %v", err)
	}
}

func TestCallController_EndCallWhileConnecting(t *testing.T) {
	f := newControllerFixture(t)
	f.credentials.block = true

	errCh := make(chan error, 1)
	go func() {
		_, err := f.controller.StartCall(context.Background())
		errCh <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for f.controller.Snapshot().Status != entities.CallStatusConnecting {
		if time.Now().After(deadline) {
			t.Fatal("Call never reached connecting")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := f.controller.EndCall(); err != nil {
		t.Fatalf("EndCall failed: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, domain.ErrCallEnded) {
			t.Errorf("Expected ErrCallEnded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("StartCall did not return after EndCall")
	}

	if f.controller.Snapshot().Status != entities.CallStatusDisconnected {
		t.Error("Expected disconnected after aborted connect")
	}
}

func TestCallController_HandleUtteranceFilesComplaint(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	f.controller.StartCall(ctx)
	f.backend.reply = filedReply

	result, err := f.controller.HandleUtterance(ctx, "No water in Sector 15 for 2 days")
	if err != nil {
		t.Fatalf("HandleUtterance failed: %v", err)
	}

	if len(result.Complaints) != 1 {
		t.Fatalf("Expected 1 complaint, got %d", len(result.Complaints))
	}
	if result.Complaints[0].ID != "WS20231201-0001" {
		t.Errorf("Expected WS20231201-0001, got %s", result.Complaints[0].ID)
	}
	if !strings.Contains(result.Reply, "Your complaint ID is WS20231201-0001.") {
		t.Errorf("Expected ID in reply, got %q", result.Reply)
	}
	if strings.Contains(result.Reply, "[[COMPLAINT") {
		t.Errorf("Tag must not be spoken: %q", result.Reply)
	}

	stored, err := f.complaints.Get(ctx, "WS20231201-0001")
	if err != nil {
		t.Fatalf("Complaint not stored: %v", err)
	}
	if stored.Location != "Sector 15" {
		t.Errorf("Unexpected stored complaint %+v", stored)
	}

	if n := f.events.count(domain.EventComplaintSubmitted); n != 1 {
		t.Errorf("Expected 1 complaint_submitted event, got %d", n)
	}

	// The system prompt leads, followed by the user turn
	history := f.backend.seen[0]
	if history[0].Role != repositories.SystemRole || history[1].Content != "No water in Sector 15 for 2 days" {
		t.Errorf("Unexpected backend history %+v", history)
	}

	// The next turn sees the spoken reply, not the tag
	f.backend.reply = "Anything else?"
	f.controller.HandleUtterance(ctx, "No, thanks")
	second := f.backend.seen[1]
	if len(second) != 4 || second[2].Content != result.Reply {
		t.Errorf("Expected previous reply in history, got %+v", second)
	}
}

func TestCallController_HandleUtteranceRequiresCall(t *testing.T) {
	f := newControllerFixture(t)

	if _, err := f.controller.HandleUtterance(context.Background(), "hello"); !errors.Is(err, domain.ErrNoActiveCall) {
		t.Errorf("Expected ErrNoActiveCall, got %v", err)
	}

	f.controller.StartCall(context.Background())
	if _, err := f.controller.HandleUtterance(context.Background(), "   "); !errors.Is(err, domain.ErrEmptyTranscript) {
		t.Errorf("Expected ErrEmptyTranscript, got %v", err)
	}
}

func TestCallController_LateReplyIsDiscarded(t *testing.T) {
	f := newControllerFixture(t)
	ctx := context.Background()
	f.controller.StartCall(ctx)

	f.backend.reply = filedReply
	f.backend.started = make(chan struct{})
	f.backend.release = make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		_, err := f.controller.HandleUtterance(ctx, "No water in Sector 15")
		errCh <- err
	}()

	<-f.backend.started
	if err := f.controller.EndCall(); err != nil {
		t.Fatalf("EndCall failed: %v", err)
	}
	close(f.backend.release)

	if err := <-errCh; !errors.Is(err, domain.ErrCallEnded) {
		t.Errorf("Expected ErrCallEnded, got %v", err)
	}

	count, _ := f.complaints.Count(ctx)
	if count != 0 {
		t.Errorf("Expected late reply to file nothing, got %d complaints", count)
	}
}

func TestCallController_EndIfExpired(t *testing.T) {
	f := newControllerFixture(t)
	session, _ := f.controller.StartCall(context.Background())

	if f.controller.EndIfExpired(session.ExpiresAt.Add(-time.Second)) {
		t.Error("Call must not end before its credential expires")
	}
	if !f.controller.EndIfExpired(*session.ExpiresAt) {
		t.Error("Expected expired call to end")
	}
	if f.controller.Snapshot().Status != entities.CallStatusDisconnected {
		t.Error("Expected disconnected after expiry")
	}
}

func TestFillComplaintIDs(t *testing.T) {
	one := []*entities.Complaint{{ID: "WS20231201-0001"}}
	two := []*entities.Complaint{{ID: "WS20231201-0001"}, {ID: "DR20231201-0002"}}

	tests := []struct {
		spoken  string
		created []*entities.Complaint
		want    string
	}{
		{"Your ID is {complaint_id}.", one, "Your ID is WS20231201-0001."},
		{"Registered.", one, "Registered. Your complaint ID is WS20231201-0001."},
		{"Registered.", two, "Registered. Your complaint IDs are WS20231201-0001 and DR20231201-0002."},
		{"Your ID is {complaint_id}.", nil, "Your ID is not available yet."},
		{"How can I help?", nil, "How can I help?"},
	}

	for _, tt := range tests {
		if got := fillComplaintIDs(tt.spoken, tt.created); got != tt.want {
			t.Errorf("fillComplaintIDs(%q) = %q, want %q", tt.spoken, got, tt.want)
		}
	}
}
