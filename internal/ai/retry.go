// retry.go - Error classification and backoff shared by the OCR providers

package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

// RetryConfig controls how often and how slowly a provider call is repeated
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig gives a receipt three tries within roughly ten seconds
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    1 * time.Second,
	MaxDelay:        8 * time.Second,
	BackoffMultiple: 2.0,
}

// Error categories reported in logs and by ProviderError
const (
	CategoryBadRequest = "bad_request"
	CategoryAuth       = "unauthorized"
	CategoryTooLarge   = "payload_too_large"
	CategoryRateLimit  = "rate_limit"
	CategoryServer     = "server_error"
	CategoryTimeout    = "timeout"
	CategoryCanceled   = "canceled"
	CategoryNetwork    = "network_error"
	CategoryQuota      = "quota_exceeded"
	CategoryUnknown    = "unknown"
)

// ProviderError is a classified failure of an OCR provider call
type ProviderError struct {
	Provider   string
	Category   string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s (%d): %v", e.Provider, e.Category, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Category, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// statusError carries a non-200 answer from an HTTP based provider
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	return e.Message
}

// classifyError maps err to a ProviderError. Status codes come from
// googleapi.Error (Gemini) or statusError (Mistral).
func classifyError(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	pe := &ProviderError{Provider: provider, Category: CategoryUnknown, Err: err}

	var apiErr *googleapi.Error
	var httpErr *statusError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.Code
	case errors.As(err, &httpErr):
		pe.StatusCode = httpErr.Code
	}
	if pe.StatusCode > 0 {
		pe.Category, pe.Retryable = classifyStatus(pe.StatusCode)
		return pe
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		pe.Category, pe.Retryable = CategoryTimeout, true
	case errors.Is(err, context.Canceled):
		pe.Category = CategoryCanceled
	default:
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "quota"):
			pe.Category = CategoryQuota
		case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
			pe.Category, pe.Retryable = CategoryTimeout, true
		case strings.Contains(msg, "connection") || strings.Contains(msg, "network"):
			pe.Category, pe.Retryable = CategoryNetwork, true
		}
	}
	return pe
}

func classifyStatus(code int) (string, bool) {
	switch {
	case code == http.StatusTooManyRequests:
		return CategoryRateLimit, true
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return CategoryAuth, false
	case code == http.StatusRequestEntityTooLarge:
		return CategoryTooLarge, false
	case code >= 500:
		return CategoryServer, true
	case code >= 400:
		return CategoryBadRequest, false
	default:
		return CategoryUnknown, false
	}
}

// withRetry runs call until it succeeds, fails permanently or runs out of attempts
func withRetry[T any](ctx context.Context, provider string, logger *zap.Logger, cfg RetryConfig, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var last *ProviderError
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := call(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("✅ retry succeeded", zap.Int("attempt", attempt))
			}
			return result, nil
		}

		last = classifyError(provider, err)
		logger.Warn("OCR call failed",
			zap.Int("attempt", attempt),
			zap.String("category", last.Category),
			zap.Error(err))
		if !last.Retryable || attempt == cfg.MaxAttempts {
			break
		}

		delay := backoff(attempt, cfg)
		if last.Category == CategoryRateLimit {
			delay *= 2
		}
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry wait interrupted: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return zero, last
}

// backoff is InitialDelay * BackoffMultiple^(attempt-1), capped at MaxDelay
func backoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= cfg.BackoffMultiple
	}
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	return time.Duration(delay)
}
