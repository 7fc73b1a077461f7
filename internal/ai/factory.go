// factory.go - OCR Provider Factory for creating provider instances

package ai

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/configs"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

func ocrTimeout() time.Duration {
	return time.Duration(configs.OCR_TIMEOUT) * time.Second
}

// CreateOCRProvider creates an OCR provider based on configuration
func CreateOCRProvider() (OCRProvider, error) {
	switch configs.OCR_PROVIDER {
	case "gemini":
		common.Logger().Info("🔵 Creating Gemini OCR provider", zap.String("model", configs.OCR_MODEL_NAME))
		return NewGeminiProvider(configs.GEMINI_API_KEY, configs.OCR_MODEL_NAME, ocrTimeout()), nil

	case "mistral":
		common.Logger().Info("🔷 Creating Mistral OCR provider", zap.String("model", configs.MISTRAL_MODEL_NAME))
		return NewMistralProvider(configs.MISTRAL_API_KEY, configs.MISTRAL_MODEL_NAME, ocrTimeout()), nil

	default:
		return nil, fmt.Errorf("unsupported OCR provider: %s (supported: gemini, mistral)", configs.OCR_PROVIDER)
	}
}

// CreateOCRProviderWithFallback creates the configured provider chained with
// the other one when its API key is present
func CreateOCRProviderWithFallback() (OCRProvider, error) {
	primary, err := CreateOCRProvider()
	if err != nil {
		return nil, err
	}

	var fallback OCRProvider
	switch primary.GetProviderName() {
	case "gemini":
		if configs.MISTRAL_API_KEY != "" {
			fallback = NewMistralProvider(configs.MISTRAL_API_KEY, configs.MISTRAL_MODEL_NAME, ocrTimeout())
			common.Logger().Info("✅ Fallback provider configured: Mistral")
		}
	case "mistral":
		if configs.GEMINI_API_KEY != "" {
			fallback = NewGeminiProvider(configs.GEMINI_API_KEY, configs.OCR_MODEL_NAME, ocrTimeout())
			common.Logger().Info("✅ Fallback provider configured: Gemini")
		}
	}

	return NewFallbackOCR(primary, fallback), nil
}

// CreateTranscriber returns the Whisper transcriber, or nil when no key is set
func CreateTranscriber() Transcriber {
	if configs.OPENAI_API_KEY == "" {
		common.Logger().Warn("⚠️  OPENAI_API_KEY is not set, voice notes are disabled")
		return nil
	}
	return NewWhisperTranscriber(configs.OPENAI_API_KEY, configs.WHISPER_MODEL, configs.SPEECH_LANG)
}
