// interface.go - OCR and speech provider interfaces

package ai

import (
	"context"
	"errors"
)

// ErrNoText is returned by a provider that answered but recognized nothing
var ErrNoText = errors.New("no text recognized")

// OCRProvider defines the interface that all OCR providers must implement.
// RecognizeText returns the raw text found in image; an empty string with a
// nil error means the provider saw no text at all.
type OCRProvider interface {
	RecognizeText(ctx context.Context, image []byte, mimeType string) (string, error)

	// GetProviderName returns the name of the provider (e.g., "gemini", "mistral")
	GetProviderName() string
}

// Transcriber turns a voice note into text. hints are names the model
// should prefer when it hears something similar.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string, hints []string) (string, error)
}

