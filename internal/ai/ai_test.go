package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		category  string
		retryable bool
	}{
		{"rate limit", &googleapi.Error{Code: 429}, CategoryRateLimit, true},
		{"server", &googleapi.Error{Code: 503}, CategoryServer, true},
		{"auth", &googleapi.Error{Code: 401}, CategoryAuth, false},
		{"wrapped api error", fmt.Errorf("call: %w", &googleapi.Error{Code: 413}), CategoryTooLarge, false},
		{"http status", &statusError{Code: 422, Message: "invalid image"}, CategoryBadRequest, false},
		{"http 502", &statusError{Code: 502}, CategoryServer, true},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), CategoryTimeout, true},
		{"canceled", context.Canceled, CategoryCanceled, false},
		{"network", errors.New("connection reset by peer"), CategoryNetwork, true},
		{"quota", errors.New("Quota exhausted"), CategoryQuota, false},
		{"other", errors.New("boom"), CategoryUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError("gemini", tt.err)
			if got.Category != tt.category || got.Retryable != tt.retryable {
				t.Fatalf("classify got=%s/%v want=%s/%v", got.Category, got.Retryable, tt.category, tt.retryable)
			}
		})
	}
	if classifyError("gemini", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
	if !errors.Is(classifyError("gemini", fmt.Errorf("x: %w", context.DeadlineExceeded)), context.DeadlineExceeded) {
		t.Fatalf("ProviderError must unwrap to the cause")
	}
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffMultiple: 2}
}

func TestWithRetry_RetriesTransientErrors(t *testing.T) {
	calls := 0
	want := &genai.GenerateContentResponse{}
	resp, err := withRetry(context.Background(), "gemini", zap.NewNop(), fastRetry(), func(context.Context) (*genai.GenerateContentResponse, error) {
		calls++
		if calls < 3 {
			return nil, &googleapi.Error{Code: 503}
		}
		return want, nil
	})
	if err != nil || resp != want {
		t.Fatalf("retry got=%v,%v want success", resp, err)
	}
	if calls != 3 {
		t.Fatalf("calls got=%d want=3", calls)
	}
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), "gemini", zap.NewNop(), fastRetry(), func(context.Context) (string, error) {
		calls++
		return "", &googleapi.Error{Code: 400}
	})

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Category != CategoryBadRequest || pe.Provider != "gemini" {
		t.Fatalf("error got=%v want bad_request ProviderError", err)
	}
	if calls != 1 {
		t.Fatalf("calls got=%d want=1", calls)
	}
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), "mistral", zap.NewNop(), fastRetry(), func(context.Context) (int, error) {
		calls++
		return 0, &statusError{Code: 500, Message: "down"}
	})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != 500 || calls != 3 {
		t.Fatalf("got err=%v calls=%d want 500 after 3 calls", err, calls)
	}
}

func TestBackoff(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second, BackoffMultiple: 2}
	if got := backoff(1, cfg); got != time.Second {
		t.Fatalf("attempt 1 got=%v", got)
	}
	if got := backoff(2, cfg); got != 2*time.Second {
		t.Fatalf("attempt 2 got=%v", got)
	}
	if got := backoff(5, cfg); got != 3*time.Second {
		t.Fatalf("attempt 5 got=%v want cap", got)
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Banco Pichincha\n"), genai.Text("Monto: $10.00 ")}},
	}}}
	got, err := responseText(resp)
	if err != nil || got != "Banco Pichincha\nMonto: $10.00" {
		t.Fatalf("responseText got=%q err=%v", got, err)
	}
	if _, err := responseText(&genai.GenerateContentResponse{}); err == nil {
		t.Fatalf("expected error for empty candidates")
	}
}

type fakeOCR struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeOCR) RecognizeText(context.Context, []byte, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeOCR) GetProviderName() string { return f.name }

func TestFallbackOCR(t *testing.T) {
	primary := &fakeOCR{name: "gemini", err: errors.New("down")}
	backup := &fakeOCR{name: "mistral", text: "comprobante"}
	chain := NewFallbackOCR(primary, nil, backup)

	text, err := chain.RecognizeText(context.Background(), []byte("x"), "image/jpeg")
	if err != nil || text != "comprobante" {
		t.Fatalf("fallback got=%q,%v", text, err)
	}
	if chain.GetProviderName() != "gemini" {
		t.Fatalf("name got=%s", chain.GetProviderName())
	}

	// an empty answer is final
	primary.err = nil
	backup.calls = 0
	text, err = chain.RecognizeText(context.Background(), nil, "image/jpeg")
	if err != nil || text != "" || backup.calls != 0 {
		t.Fatalf("empty answer got=%q,%v backupCalls=%d", text, err, backup.calls)
	}

	backup.err = errors.New("also down")
	primary.err = errors.New("down")
	if _, err := chain.RecognizeText(context.Background(), nil, "image/jpeg"); err == nil || !strings.Contains(err.Error(), "mistral") {
		t.Fatalf("joined error got=%v", err)
	}
}

func TestMistralRecognizeText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
			return
		}
		var req mistralRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Document.Type != "image_url" || !strings.HasPrefix(req.Document.ImageURL, "data:image/jpeg;base64,") {
			t.Errorf("document got=%+v", req.Document)
		}
		_ = json.NewEncoder(w).Encode(mistralResponse{Pages: []mistralPage{{Markdown: "uno"}, {Index: 1, Markdown: "dos"}}})
	}))
	defer srv.Close()

	m := NewMistralProvider("key", "mistral-ocr-latest", 5*time.Second)
	m.endpoint = srv.URL
	m.retry = fastRetry()
	got, err := m.RecognizeText(context.Background(), []byte{1, 2, 3}, "image/jpeg")
	if err != nil || got != "uno\n\ndos" {
		t.Fatalf("mistral got=%q err=%v", got, err)
	}

	m.apiKey = "wrong"
	if _, err := m.RecognizeText(context.Background(), []byte{1}, "image/jpeg"); err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("error got=%v", err)
	}
	if _, err := m.RecognizeText(context.Background(), []byte{1}, "application/pdf"); err == nil {
		t.Fatalf("pdf should be rejected")
	}
}

func TestHintPrompt(t *testing.T) {
	got := hintPrompt([]string{"Juan Perez", " ", "Ana", "Maria Lopez"}, 16)
	if got != "Juan Perez, Ana" {
		t.Fatalf("hintPrompt got=%q", got)
	}
	if hintPrompt(nil, 10) != "" {
		t.Fatalf("empty hints should give empty prompt")
	}
}
