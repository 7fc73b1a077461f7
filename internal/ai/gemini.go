// gemini.go - Gemini client for receipt OCR

package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/ratelimit"
)

// GeminiProvider implements OCRProvider on top of the Gemini API
type GeminiProvider struct {
	apiKey    string
	modelName string
	timeout   time.Duration
	retry     RetryConfig
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(apiKey, modelName string, timeout time.Duration) *GeminiProvider {
	return &GeminiProvider{
		apiKey:    apiKey,
		modelName: modelName,
		timeout:   timeout,
		retry:     DefaultRetryConfig,
	}
}

// GetProviderName returns "gemini"
func (g *GeminiProvider) GetProviderName() string {
	return "gemini"
}

// RecognizeText sends image to Gemini and returns the plain text it reads
func (g *GeminiProvider) RecognizeText(ctx context.Context, image []byte, mimeType string) (string, error) {
	logger := common.Logger().With(zap.String("provider", "gemini"), zap.String("model", g.modelName))

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := ratelimit.WaitForRateLimit(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.modelName)
	model.SetMaxOutputTokens(8192)
	model.SetTemperature(0)

	logger.Debug("📖 OCR request", zap.Int("bytes", len(image)), zap.String("mime", mimeType))

	resp, err := withRetry(ctx, g.GetProviderName(), logger, g.retry, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return model.GenerateContent(ctx, genai.Text(ocrPrompt), genai.Blob{MIMEType: mimeType, Data: image})
	})
	if err != nil {
		return "", err
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	logger.Info("✅ OCR finished", zap.Int("chars", len(text)))
	return text, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil {
			return "", fmt.Errorf("no candidates from Gemini API (block reason: %v)", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("no candidates from Gemini API")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if cand.FinishReason == genai.FinishReasonMaxTokens {
		common.Logger().Warn("⚠️  OCR text was truncated (FinishReason: MAX_TOKENS)")
	}
	return strings.TrimSpace(sb.String()), nil
}
