// whisper.go - Voice note transcription through the OpenAI Whisper API

package ai

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// whisperPromptMaxChars keeps the prompt under Whisper's 224 token window
const whisperPromptMaxChars = 800

// WhisperTranscriber implements Transcriber with go-openai
type WhisperTranscriber struct {
	client   *openai.Client
	model    string
	language string
	timeout  time.Duration
}

// NewWhisperTranscriber creates a transcriber for the given API key
func NewWhisperTranscriber(apiKey, model, language string) *WhisperTranscriber {
	return &WhisperTranscriber{
		client:   openai.NewClient(apiKey),
		model:    model,
		language: language,
		timeout:  60 * time.Second,
	}
}

// Transcribe returns the recognized text of audio, trimmed
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, filename string, hints []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Prompt:   hintPrompt(hints, whisperPromptMaxChars),
		Language: w.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	common.Logger().Info("🎙️ audio transcribed", zap.Int("bytes", len(audio)), zap.Int("chars", len(text)))
	return text, nil
}

// hintPrompt joins hints with ", " while the result stays within maxChars
func hintPrompt(hints []string, maxChars int) string {
	var sb strings.Builder
	for _, h := range hints {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		extra := len(h)
		if sb.Len() > 0 {
			extra += 2
		}
		if sb.Len()+extra > maxChars {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(h)
	}
	return sb.String()
}
