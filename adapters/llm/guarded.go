package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

// ApologyUtterance is spoken whenever the backend fails to produce a reply
const ApologyUtterance = "I apologize, but I'm experiencing technical difficulties. Please try again in a moment."

// GuardedBackend converts backend failures into ApologyUtterance. The
// underlying error is logged and never reaches the caller, with one
// exception: if the caller's own context was cancelled the cancellation is
// returned so an abandoned turn is not answered.
type GuardedBackend struct {
	next   repositories.ConversationalBackend
	logger *zap.Logger
}

// Ensure GuardedBackend implements the ConversationalBackend interface
var _ repositories.ConversationalBackend = (*GuardedBackend)(nil)

// NewGuardedBackend wraps next
func NewGuardedBackend(next repositories.ConversationalBackend, logger *zap.Logger) *GuardedBackend {
	return &GuardedBackend{next: next, logger: logger}
}

// Generate implements ConversationalBackend interface
func (g *GuardedBackend) Generate(ctx context.Context, history []repositories.ChatMessage) (reply repositories.ChatMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Conversational backend panicked", zap.Any("panic", r))
			reply, err = g.apology(ctx, fmt.Errorf("panic: %v", r))
		}
	}()

	reply, err = g.next.Generate(ctx, history)
	if err != nil {
		return g.apology(ctx, err)
	}
	if strings.TrimSpace(reply.Content) == "" {
		return g.apology(ctx, errors.New("empty reply"))
	}

	reply.Role = repositories.AssistantRole
	return reply, nil
}

func (g *GuardedBackend) apology(ctx context.Context, cause error) (repositories.ChatMessage, error) {
	if errors.Is(ctx.Err(), context.Canceled) {
		return repositories.ChatMessage{}, ctx.Err()
	}

	g.logger.Error("Conversational backend failed, apologizing", zap.Error(cause))
	return repositories.ChatMessage{Role: repositories.AssistantRole, Content: ApologyUtterance}, nil
}
