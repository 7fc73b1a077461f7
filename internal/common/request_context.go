// request_context.go - Per-message tracking and logging

package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestContext tracks one inbound message from webhook to reply
type RequestContext struct {
	RequestID        string
	UserID           string
	MessageType      string
	StartTime        time.Time
	Steps            []StepLog
	CurrentStep      string
	CurrentStepStart time.Time

	logger *zap.Logger
}

// StepLog represents a single processing step
type StepLog struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Duration  int64     `json:"duration_ms"`
	Status    string    `json:"status"` // "success", "failed", "skipped"
	Error     string    `json:"error,omitempty"`
}

// NewRequestContext creates a tracking context for a message from userID
func NewRequestContext(userID, messageType string) *RequestContext {
	reqID := uuid.New().String()
	logger := Logger().With(
		zap.String("request_id", reqID),
		zap.String("user_id", userID),
	)
	logger.Info("📩 message received", zap.String("type", messageType))

	return &RequestContext{
		RequestID:   reqID,
		UserID:      userID,
		MessageType: messageType,
		StartTime:   time.Now(),
		Steps:       []StepLog{},
		logger:      logger,
	}
}

// StartStep begins tracking a new processing step
func (rc *RequestContext) StartStep(stepName string) {
	rc.CurrentStep = stepName
	rc.CurrentStepStart = time.Now()
	rc.logger.Debug("┌── step started", zap.String("step", stepName))
}

// EndStep completes the current step and records timing
func (rc *RequestContext) EndStep(status string, err error) {
	if rc.CurrentStep == "" {
		return
	}
	duration := time.Since(rc.CurrentStepStart).Milliseconds()

	stepLog := StepLog{
		Name:      rc.CurrentStep,
		StartTime: rc.CurrentStepStart,
		Duration:  duration,
		Status:    status,
	}

	if err != nil {
		stepLog.Error = err.Error()
		rc.logger.Warn("❌ step failed",
			zap.String("step", rc.CurrentStep),
			zap.Int64("duration_ms", duration),
			zap.Error(err))
	} else {
		rc.logger.Debug("└── step finished",
			zap.String("step", rc.CurrentStep),
			zap.String("status", status),
			zap.Int64("duration_ms", duration))
	}

	rc.Steps = append(rc.Steps, stepLog)
	rc.CurrentStep = ""
}

// Finish logs the request summary
func (rc *RequestContext) Finish() {
	if rc.CurrentStep != "" {
		rc.EndStep("skipped", nil)
	}
	rc.logger.Info("✅ message handled",
		zap.Int64("total_duration_ms", time.Since(rc.StartTime).Milliseconds()),
		zap.Int("steps", len(rc.Steps)))
}

// LogInfo logs info-level message with request ID fields
func (rc *RequestContext) LogInfo(format string, args ...interface{}) {
	rc.logger.Info(fmt.Sprintf(format, args...))
}

// LogWarning logs warning-level message with request ID fields
func (rc *RequestContext) LogWarning(format string, args ...interface{}) {
	rc.logger.Warn(fmt.Sprintf(format, args...))
}

// LogError logs error-level message with request ID fields
func (rc *RequestContext) LogError(format string, args ...interface{}) {
	rc.logger.Error(fmt.Sprintf(format, args...))
}

// Logger exposes the request-scoped zap logger for structured fields
func (rc *RequestContext) Logger() *zap.Logger {
	return rc.logger
}
