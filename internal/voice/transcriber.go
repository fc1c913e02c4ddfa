package voice

import (
	"context"
	"errors"
)

// Transient recognition outcomes. Neither is reported to the frame loop.
var (
	// ErrNoSpeech means the listen phase timed out without a phrase.
	ErrNoSpeech = errors.New("voice: no speech detected")
	// ErrUnintelligible means audio was captured but could not be transcribed.
	ErrUnintelligible = errors.New("voice: speech not understood")
)

// Utterance is one captured phrase, opaque to everything but the transcriber
// that produced it.
type Utterance struct {
	Audio []byte
}

// Transcriber captures a phrase from the microphone and turns it into text.
// Listen blocks until a phrase is captured, the attempt times out or ctx is
// done.
type Transcriber interface {
	Listen(ctx context.Context) (Utterance, error)
	Recognize(ctx context.Context, u Utterance) (string, error)
}

// IsTransient reports whether err is an expected recognition miss.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNoSpeech) || errors.Is(err, ErrUnintelligible)
}
