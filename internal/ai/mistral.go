// mistral.go - Mistral OCR over its REST API, used as the fallback reader

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

// MistralOCREndpoint is the Mistral OCR API endpoint
const MistralOCREndpoint = "https://api.mistral.ai/v1/ocr"

// errPDFNotSupported: PDFs are rendered to an image before OCR
var errPDFNotSupported = errors.New("mistral: PDF input must be rendered to an image first")

// MistralProvider implements OCRProvider with the Mistral OCR model
type MistralProvider struct {
	apiKey    string
	modelName string
	endpoint  string
	client    *http.Client
	retry     RetryConfig
}

// NewMistralProvider creates a Mistral provider; timeout bounds each HTTP call
func NewMistralProvider(apiKey, modelName string, timeout time.Duration) *MistralProvider {
	return &MistralProvider{
		apiKey:    apiKey,
		modelName: modelName,
		endpoint:  MistralOCREndpoint,
		client:    &http.Client{Timeout: timeout},
		retry:     DefaultRetryConfig,
	}
}

// GetProviderName returns "mistral"
func (m *MistralProvider) GetProviderName() string {
	return "mistral"
}

type mistralDocument struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
}

type mistralRequest struct {
	Model    string          `json:"model"`
	Document mistralDocument `json:"document"`
}

type mistralPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

type mistralResponse struct {
	Pages []mistralPage `json:"pages"`
	Model string        `json:"model"`
}

type mistralError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	// some endpoints answer {"message": "..."} instead
	Message string `json:"message"`
}

// RecognizeText sends image inline as a data URL and returns the markdown of
// every page joined by blank lines
func (m *MistralProvider) RecognizeText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if mimeType == "application/pdf" {
		return "", errPDFNotSupported
	}
	logger := common.Logger().With(zap.String("provider", "mistral"), zap.String("model", m.modelName))

	payload, err := json.Marshal(mistralRequest{
		Model: m.modelName,
		Document: mistralDocument{
			Type:     "image_url",
			ImageURL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode OCR request: %w", err)
	}

	resp, err := withRetry(ctx, m.GetProviderName(), logger, m.retry, func(ctx context.Context) (*mistralResponse, error) {
		return m.post(ctx, payload)
	})
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, len(resp.Pages))
	for _, p := range resp.Pages {
		pages = append(pages, p.Markdown)
	}
	text := strings.TrimSpace(strings.Join(pages, "\n\n"))

	logger.Info("✅ OCR finished", zap.Int("pages", len(resp.Pages)), zap.Int("chars", len(text)))
	return text, nil
}

// post performs one OCR request; non-200 answers become *statusError
func (m *MistralProvider) post(ctx context.Context, payload []byte) (*mistralResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OCR response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		var apiErr mistralError
		if json.Unmarshal(body, &apiErr) == nil {
			if apiErr.Error.Message != "" {
				msg = apiErr.Error.Message
			} else if apiErr.Message != "" {
				msg = apiErr.Message
			}
		}
		return nil, &statusError{Code: resp.StatusCode, Message: msg}
	}

	var out mistralResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode OCR response: %w", err)
	}
	return &out, nil
}
