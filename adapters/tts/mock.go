package tts

import (
	"context"
	"fmt"
	"strings"

	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

// MockTextToSpeech "synthesizes" by echoing the text bytes in one chunk
type MockTextToSpeech struct{}

// Ensure MockTextToSpeech implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*MockTextToSpeech)(nil)

// NewMockTextToSpeech creates a new mock text-to-speech service
func NewMockTextToSpeech() *MockTextToSpeech {
	return &MockTextToSpeech{}
}

// ConvertTextToSpeech implements TextToSpeech interface
func (m *MockTextToSpeech) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	audioChan := make(chan []byte, 1)
	audioChan <- []byte(text)
	close(audioChan)
	return audioChan, nil
}
