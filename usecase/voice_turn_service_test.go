package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/manthansachdev12/Hackwave-pragyan/domain"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

type fakeSTT struct {
	text   string
	err    error
	config repositories.AudioConfig
}

func (f *fakeSTT) TranscribeAudio(ctx context.Context, audio []byte, config repositories.AudioConfig) (string, error) {
	f.config = config
	return f.text, f.err
}

type fakeTTS struct {
	err error
}

func (f *fakeTTS) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan []byte, 1)
	ch <- []byte(text)
	close(ch)
	return ch, nil
}

type fakeTurns struct {
	got string
	err error
}

func (f *fakeTurns) HandleUtterance(ctx context.Context, text string) (*TurnResult, error) {
	f.got = text
	if f.err != nil {
		return nil, f.err
	}
	return &TurnResult{Transcript: text, Reply: "Noted."}, nil
}

func TestVoiceTurnService_ProcessAudio(t *testing.T) {
	stt := &fakeSTT{text: "Street light not working in Block C"}
	turns := &fakeTurns{}
	service := NewVoiceTurnService(stt, &fakeTTS{}, turns, "en-IN", zaptest.NewLogger(t))

	turn, err := service.ProcessAudio(context.Background(), []byte{1, 2, 3}, repositories.AudioConfig{SampleRate: 16000, Encoding: "LINEAR16"})
	if err != nil {
		t.Fatalf("ProcessAudio failed: %v", err)
	}

	if stt.config.Language != "en-IN" {
		t.Errorf("Expected default language en-IN, got %s", stt.config.Language)
	}
	if turns.got != "Street light not working in Block C" {
		t.Errorf("Transcript not forwarded, got %q", turns.got)
	}
	if turn.Reply != "Noted." {
		t.Errorf("Unexpected reply %q", turn.Reply)
	}

	var audio []byte
	for chunk := range turn.Audio {
		audio = append(audio, chunk...)
	}
	if string(audio) != "Noted." {
		t.Errorf("Expected synthesized reply, got %q", audio)
	}
}

func TestVoiceTurnService_Errors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	service := NewVoiceTurnService(&fakeSTT{text: "  "}, &fakeTTS{}, &fakeTurns{}, "en-IN", logger)
	if _, err := service.ProcessAudio(ctx, []byte{1}, repositories.AudioConfig{}); !errors.Is(err, domain.ErrEmptyTranscript) {
		t.Errorf("Expected ErrEmptyTranscript, got %v", err)
	}

	service = NewVoiceTurnService(&fakeSTT{err: errors.New("quota")}, &fakeTTS{}, &fakeTurns{}, "en-IN", logger)
	if _, err := service.ProcessAudio(ctx, []byte{1}, repositories.AudioConfig{}); err == nil {
		t.Error("Expected transcription error")
	}

	service = NewVoiceTurnService(&fakeSTT{text: "hello"}, &fakeTTS{}, &fakeTurns{err: domain.ErrNoActiveCall}, "en-IN", logger)
	if _, err := service.ProcessAudio(ctx, []byte{1}, repositories.AudioConfig{}); !errors.Is(err, domain.ErrNoActiveCall) {
		t.Errorf("Expected ErrNoActiveCall, got %v", err)
	}

	// Synthesis failure still returns the text reply
	service = NewVoiceTurnService(&fakeSTT{text: "hello"}, &fakeTTS{err: errors.New("tts down")}, &fakeTurns{}, "en-IN", logger)
	turn, err := service.ProcessAudio(ctx, []byte{1}, repositories.AudioConfig{})
	if err != nil {
		t.Fatalf("Expected text-only turn, got %v", err)
	}
	if turn.Audio != nil || turn.Reply != "Noted." {
		t.Errorf("Unexpected turn %+v", turn)
	}
}
