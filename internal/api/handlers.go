// handlers.go - WhatsApp webhook, health check and admin endpoints

package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/processor"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/whatsapp"
)

// ServiceName and Version are reported by /health
const (
	ServiceName = "troncalnet-receipt-bot"
	Version     = "1.0.0"
)

// defaultPaymentsLimit caps the admin listing when no limit is given
const defaultPaymentsLimit = 100

// MessageHandler processes one inbound WhatsApp message
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *whatsapp.InboundMessage)
}

// PaymentLister returns recorded payments, oldest first
type PaymentLister interface {
	Entries(ctx context.Context) ([]models.LedgerEntry, error)
}

// Config holds what the HTTP layer needs
type Config struct {
	VerifyToken string
	JWTSecret   string
	UploadDir   string
	TempMaxAge  time.Duration
}

// Server exposes the bot over HTTP
type Server struct {
	bot      MessageHandler
	payments PaymentLister
	cfg      Config
}

// NewServer creates the HTTP layer around bot and the payment ledger
func NewServer(bot MessageHandler, payments PaymentLister, cfg Config) *Server {
	return &Server{bot: bot, payments: payments, cfg: cfg}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	// Root endpoint for SSL verification
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/health", s.HealthHandler)

	router.GET("/whatsapp", s.VerifyWebhookHandler)
	router.POST("/whatsapp", s.WebhookHandler)

	admin := router.Group("/api/v1/admin", AdminAuth(s.cfg.JWTSecret))
	admin.GET("/payments", s.ListPaymentsHandler)
	admin.POST("/cleanup", s.CleanupHandler)

	return router
}

// HealthHandler reports liveness
func (s *Server) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
		"version": Version,
	})
}

// VerifyWebhookHandler answers Meta's subscription challenge
func (s *Server) VerifyWebhookHandler(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == s.cfg.VerifyToken {
		common.Logger().Info("✅ webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}
	common.Logger().Warn("webhook verification failed", zap.String("mode", mode))
	c.String(http.StatusForbidden, "Verification token mismatch")
}

// WebhookHandler handles a message delivery. It always answers 200 so Meta
// does not redeliver; failures are logged and reported to the user by the bot.
func (s *Server) WebhookHandler(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		common.Logger().Error("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	msg, ok := whatsapp.ParseInbound(raw)
	if !ok {
		// status callbacks and deliveries without messages
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	s.bot.HandleMessage(c.Request.Context(), msg)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListPaymentsHandler returns the most recent ledger entries (?limit=N)
func (s *Server) ListPaymentsHandler(c *gin.Context) {
	limit := defaultPaymentsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": "error",
				"error":  "limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	entries, err := s.payments.Entries(c.Request.Context())
	if err != nil {
		common.Logger().Error("failed to list payments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "failed to read payments",
		})
		return
	}
	total := len(entries)
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"total":    total,
		"count":    len(entries),
		"payments": entries,
	})
}

// CleanupHandler removes stale temp files under the upload directory
func (s *Server) CleanupHandler(c *gin.Context) {
	removed, err := processor.CleanupTempFiles(s.cfg.UploadDir, s.cfg.TempMaxAge)
	if err != nil {
		common.Logger().Error("temp cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"removed": removed,
	})
}
