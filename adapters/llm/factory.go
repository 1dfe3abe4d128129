package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

// Supported values for Config.Provider
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Config selects and configures a conversational backend
type Config struct {
	Provider string
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
}

// New builds the configured backend, wrapped so failures become the apology utterance
func New(ctx context.Context, config Config, logger *zap.Logger) (repositories.ConversationalBackend, error) {
	var backend repositories.ConversationalBackend

	switch strings.ToLower(config.Provider) {
	case ProviderGemini, "":
		gemini, err := NewGeminiBackend(ctx, config.Gemini, logger)
		if err != nil {
			return nil, err
		}
		backend = gemini
	case ProviderOpenAI:
		oa, err := NewOpenAIBackend(config.OpenAI, logger)
		if err != nil {
			return nil, err
		}
		backend = oa
	case ProviderMock:
		logger.Warn("Using mock conversational backend")
		backend = NewMockBackend()
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", config.Provider)
	}

	return NewGuardedBackend(backend, logger), nil
}
