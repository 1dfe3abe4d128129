package repositories

import "context"

// TextToSpeech streams synthesized audio for a reply. The channel is closed
// once all audio has been delivered or ctx is done.
type TextToSpeech interface {
	ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error)
}
