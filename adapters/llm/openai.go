package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig holds configuration for the OpenAI-compatible backend
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string // Optional: any OpenAI-compatible endpoint
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

// OpenAIBackend implements the ConversationalBackend interface using the chat completions API
type OpenAIBackend struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

// Ensure OpenAIBackend implements the ConversationalBackend interface
var _ repositories.ConversationalBackend = (*OpenAIBackend)(nil)

// NewOpenAIBackend creates a new OpenAI backend
func NewOpenAIBackend(config OpenAIConfig, logger *zap.Logger) (*OpenAIBackend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}
	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}
	if config.MaxOutputTokens <= 0 {
		config.MaxOutputTokens = defaultMaxTokens
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(maxAttempts - 1),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	logger.Info("OpenAI backend ready", zap.String("model", config.Model))

	return &OpenAIBackend{
		client:      openai.NewClient(opts...),
		model:       config.Model,
		temperature: config.Temperature,
		maxTokens:   config.MaxOutputTokens,
		timeout:     config.Timeout,
		logger:      logger,
	}, nil
}

// Generate implements ConversationalBackend interface
func (o *OpenAIBackend) Generate(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatMessage, error) {
	messages := toOpenAIMessages(history)
	if len(messages) == 0 {
		return repositories.ChatMessage{}, errors.New("no conversation to respond to")
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               openai.ChatModel(o.model),
		Temperature:         openai.Float(o.temperature),
		MaxCompletionTokens: openai.Int(int64(o.maxTokens)),
	})
	if err != nil {
		return repositories.ChatMessage{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return repositories.ChatMessage{}, errors.New("no choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return repositories.ChatMessage{}, errors.New("empty message content")
	}

	o.logger.Debug("OpenAI reply generated",
		zap.Int("history_length", len(history)),
		zap.String("response_preview", preview(content)))

	return repositories.ChatMessage{Role: repositories.AssistantRole, Content: content}, nil
}

func toOpenAIMessages(history []repositories.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case repositories.SystemRole:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case repositories.AssistantRole:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}
