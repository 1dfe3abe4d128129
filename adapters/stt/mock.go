package stt

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

// MockSpeechToText treats audio payloads that are printable UTF-8 as the
// spoken text itself, so the voice pipeline can be driven from curl or tests
// without a speech engine.
type MockSpeechToText struct {
	logger *zap.Logger
}

// Ensure MockSpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*MockSpeechToText)(nil)

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger) *MockSpeechToText {
	return &MockSpeechToText{logger: logger}
}

// TranscribeAudio implements SpeechToText interface
func (s *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	s.logger.Info("Processing mock speech-to-text",
		zap.Int("audioSize", len(audioData)),
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding))

	if len(audioData) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	if !utf8.Valid(audioData) {
		return "", domain.ErrEmptyTranscript
	}

	text := strings.TrimSpace(string(audioData))
	for _, r := range text {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return "", domain.ErrEmptyTranscript
		}
	}
	if text == "" {
		return "", domain.ErrEmptyTranscript
	}

	return text, nil
}
