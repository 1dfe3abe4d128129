package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

// UtteranceHandler runs a text conversation turn
type UtteranceHandler interface {
	HandleUtterance(ctx context.Context, text string) (*TurnResult, error)
}

// VoiceTurn is a completed voice turn. Audio is nil when synthesis failed;
// the text reply is still valid in that case.
type VoiceTurn struct {
	*TurnResult
	Audio <-chan []byte
}

// VoiceTurnService orchestrates speech-to-text, the conversation turn and
// text-to-speech
type VoiceTurnService struct {
	speechToText repositories.SpeechToText
	textToSpeech repositories.TextToSpeech
	turns        UtteranceHandler
	language     string
	logger       *zap.Logger
}

// NewVoiceTurnService creates a new voice turn service
func NewVoiceTurnService(
	stt repositories.SpeechToText,
	tts repositories.TextToSpeech,
	turns UtteranceHandler,
	language string,
	logger *zap.Logger,
) *VoiceTurnService {
	return &VoiceTurnService{
		speechToText: stt,
		textToSpeech: tts,
		turns:        turns,
		language:     language,
		logger:       logger,
	}
}

// ProcessAudio transcribes audio, runs the turn and synthesizes the reply
func (s *VoiceTurnService) ProcessAudio(ctx context.Context, audio []byte, config repositories.AudioConfig) (*VoiceTurn, error) {
	if config.Language == "" {
		config.Language = s.language
	}

	s.logger.Info("Processing voice turn",
		zap.Int("audioSize", len(audio)),
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding))

	// Step 1: Speech to Text
	transcript, err := s.speechToText.TranscribeAudio(ctx, audio, config)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyTranscript) {
			return nil, err
		}
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, domain.ErrEmptyTranscript
	}

	s.logger.Info("Transcription completed", zap.String("text", transcript))

	// Step 2: Conversation turn
	result, err := s.turns.HandleUtterance(ctx, transcript)
	if err != nil {
		return nil, err
	}

	// Step 3: Text to Speech
	audioChan, err := s.textToSpeech.ConvertTextToSpeech(ctx, result.Reply)
	if err != nil {
		s.logger.Error("Text-to-speech failed, returning text only", zap.Error(err))
		return &VoiceTurn{TurnResult: result}, nil
	}

	return &VoiceTurn{TurnResult: result, Audio: audioChan}, nil
}
