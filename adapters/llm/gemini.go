package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

const (
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultTemperature    = 0.3
	defaultTopP           = 0.8
	defaultTopK           = 40
	defaultMaxTokens      = 150 // a few spoken sentences
	defaultTimeout        = 15 * time.Second
	maxAttempts           = 3
)

var geminiSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
}

// GeminiConfig holds configuration for the Gemini backend.
// Zero values fall back to the package defaults.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int
	Timeout         time.Duration
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("gemini API key is required")
	}

	if config.Temperature != 0 && (config.Temperature < 0 || config.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", config.Temperature)
	}

	if config.TopP != 0 && (config.TopP < 0 || config.TopP > 1) {
		return fmt.Errorf("topP must be between 0 and 1, got %f", config.TopP)
	}

	if config.TopK < 0 {
		return fmt.Errorf("topK must be positive, got %f", config.TopK)
	}

	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", config.MaxOutputTokens)
	}

	if config.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", config.Timeout)
	}

	return nil
}

// withDefaults fills unset fields
func (c GeminiConfig) withDefaults() GeminiConfig {
	if c.Model == "" {
		c.Model = defaultGeminiModel
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.TopP == 0 {
		c.TopP = defaultTopP
	}
	if c.TopK == 0 {
		c.TopK = defaultTopK
	}
	if c.MaxOutputTokens == 0 {
		c.MaxOutputTokens = defaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// GeminiBackend implements the ConversationalBackend interface using Google's Gemini API
type GeminiBackend struct {
	client  *genai.Client
	config  GeminiConfig
	logger  *zap.Logger
	backoff func(attempt int) time.Duration
}

// Ensure GeminiBackend implements the ConversationalBackend interface
var _ repositories.ConversationalBackend = (*GeminiBackend)(nil)

// NewGeminiBackend creates a new Gemini backend
func NewGeminiBackend(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiBackend, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Info("Gemini backend ready",
		zap.String("model", config.Model),
		zap.Int("maxOutputTokens", config.MaxOutputTokens))

	return &GeminiBackend{
		client: client,
		config: config,
		logger: logger,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * time.Second
		},
	}, nil
}

// Generate implements ConversationalBackend interface
func (g *GeminiBackend) Generate(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatMessage, error) {
	system, contents := toGeminiContents(history)
	if len(contents) == 0 {
		return repositories.ChatMessage{}, errors.New("no conversation to respond to")
	}

	config := &genai.GenerateContentConfig{
		SafetySettings:  geminiSafetySettings,
		Temperature:     genai.Ptr(g.config.Temperature),
		TopP:            genai.Ptr(g.config.TopP),
		TopK:            genai.Ptr(g.config.TopK),
		MaxOutputTokens: int32(g.config.MaxOutputTokens),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	var response *genai.GenerateContentResponse
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		response, err = g.client.Models.GenerateContent(ctx, g.config.Model, contents, config)
		if err == nil {
			break
		}

		g.logger.Warn("Failed to generate content, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return repositories.ChatMessage{}, ctx.Err()
		case <-time.After(g.backoff(attempt)):
		}
	}
	if err != nil {
		return repositories.ChatMessage{}, fmt.Errorf("gemini generate content: %w", err)
	}

	text := responseText(response)
	if text == "" {
		return repositories.ChatMessage{}, errors.New("gemini returned no text")
	}

	g.logger.Debug("Gemini reply generated",
		zap.Int("history_length", len(history)),
		zap.String("response_preview", preview(text)))

	return repositories.ChatMessage{Role: repositories.AssistantRole, Content: text}, nil
}

func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// toGeminiContents splits system messages out into a single system
// instruction and maps the remaining turns to Gemini roles
func toGeminiContents(messages []repositories.ChatMessage) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case repositories.SystemRole:
			system = append(system, msg.Content)
		case repositories.AssistantRole:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	return strings.Join(system, "\n\n"), contents
}

func preview(s string) string {
	const n = 50
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
