package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	if _, err := NewElevenLabsTTS(ElevenLabsConfig{}, logger); err == nil {
		t.Error("Expected error when API key is not set")
	}

	if _, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "k", Stability: 1.5}, logger); err == nil {
		t.Error("Expected error for out of range stability")
	}

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if tts.config.VoiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID '%s', got '%s'", defaultVoiceID, tts.config.VoiceID)
	}
	if tts.config.Stability != defaultStability || tts.config.Clarity != defaultClarity {
		t.Errorf("Unexpected voice settings %f/%f", tts.config.Stability, tts.config.Clarity)
	}
}

func TestElevenLabsTTS_ConvertTextToSpeech_EmptyText(t *testing.T) {
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	ctx := context.Background()
	if _, err = tts.ConvertTextToSpeech(ctx, ""); err == nil {
		t.Error("Expected error for empty text")
	}

	if _, err = tts.ConvertTextToSpeech(ctx, "   "); err == nil {
		t.Error("Expected error for whitespace-only text")
	}
}

func TestElevenLabsTTS_ConvertTextToSpeech_Streams(t *testing.T) {
	audio := bytes.Repeat([]byte{0xAB}, 2500)

	var got synthesisRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-api-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/text-to-speech/voice-1/stream") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
		VoiceID:    "voice-1",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	audioChan, err := tts.ConvertTextToSpeech(context.Background(), "Your complaint has been registered.")
	if err != nil {
		t.Fatalf("Failed to convert text to speech: %v", err)
	}

	var received []byte
	for chunk := range audioChan {
		if len(chunk) > defaultChunkSize {
			t.Errorf("Chunk larger than chunk size: %d", len(chunk))
		}
		received = append(received, chunk...)
	}

	if !bytes.Equal(received, audio) {
		t.Errorf("Expected %d audio bytes, got %d", len(audio), len(received))
	}
	if got.ModelID != defaultModelID || got.VoiceSettings.SimilarityBoost != defaultClarity {
		t.Errorf("Unexpected request payload %+v", got)
	}
}

func TestElevenLabsTTS_ConvertTextToSpeech_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"quota exceeded"}`))
	}))
	defer server.Close()

	tts, _ := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "k", APIBaseURL: server.URL}, zaptest.NewLogger(t))

	_, err := tts.ConvertTextToSpeech(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected API status in error, got %v", err)
	}
}

func TestMockTextToSpeech(t *testing.T) {
	audioChan, err := NewMockTextToSpeech().ConvertTextToSpeech(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var received []byte
	for chunk := range audioChan {
		received = append(received, chunk...)
	}
	if string(received) != "hello" {
		t.Errorf("Expected echoed text, got %q", received)
	}
}

// Integration test - only runs if ELEVEN_LABS_API_KEY is set with real API key
func TestElevenLabsTTS_ConvertTextToSpeech_Integration(t *testing.T) {
	apiKey := os.Getenv("ELEVEN_LABS_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test - set ELEVEN_LABS_API_KEY environment variable with real API key")
	}

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: apiKey}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	audioChan, err := tts.ConvertTextToSpeech(ctx, "Namaste, how can I help you today?")
	if err != nil {
		t.Fatalf("Failed to convert text to speech: %v", err)
	}

	totalBytes := 0
	for chunk := range audioChan {
		totalBytes += len(chunk)
	}

	if totalBytes == 0 {
		t.Error("No audio data received")
	}
}
