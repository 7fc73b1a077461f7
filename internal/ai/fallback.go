// fallback.go - Chains OCR providers, trying the next one when a provider fails

package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// FallbackOCR tries each provider in order until one answers without error.
// An empty answer is a valid answer and stops the chain.
type FallbackOCR struct {
	providers []OCRProvider
}

// NewFallbackOCR builds a chain; nil providers are skipped
func NewFallbackOCR(providers ...OCRProvider) *FallbackOCR {
	chain := &FallbackOCR{}
	for _, p := range providers {
		if p != nil {
			chain.providers = append(chain.providers, p)
		}
	}
	return chain
}

// GetProviderName returns the primary provider name
func (f *FallbackOCR) GetProviderName() string {
	if len(f.providers) == 0 {
		return "none"
	}
	return f.providers[0].GetProviderName()
}

// RecognizeText implements OCRProvider
func (f *FallbackOCR) RecognizeText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(f.providers) == 0 {
		return "", errors.New("no OCR provider configured")
	}

	var errs []error
	for i, p := range f.providers {
		text, err := p.RecognizeText(ctx, image, mimeType)
		if err == nil {
			if i > 0 {
				common.Logger().Info("✅ fallback OCR provider answered", zap.String("provider", p.GetProviderName()))
			}
			return text, nil
		}
		common.Logger().Warn("⚠️  OCR provider failed",
			zap.String("provider", p.GetProviderName()),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", p.GetProviderName(), err))

		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}
