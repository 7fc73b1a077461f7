// main.go - The entry point: wires stores, providers and the HTTP router.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/configs"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/ai"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/api"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/classifier"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/conversation"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/extractor"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/ledger"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/matcher"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/processor"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/ratelimit"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/storage"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/whatsapp"
)

const clientsCollection = "clients"

func main() {
	// Step 0: Load configuration from environment variables
	configs.LoadConfig()
	if err := common.InitLogger(configs.LOG_LEVEL); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer common.SyncLogger()
	logger := common.Logger()

	// Step 0.5: Set production mode
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Step 1: Create the UPLOAD_DIR folder if it doesn't exist
	if err := os.MkdirAll(configs.UPLOAD_DIR, 0755); err != nil {
		logger.Fatal("Failed to create upload directory", zap.Error(err))
	}
	tempMaxAge := time.Duration(configs.TEMP_CLEANUP_HOURS) * time.Hour
	if removed, err := processor.CleanupTempFiles(configs.UPLOAD_DIR, tempMaxAge); err != nil {
		logger.Warn("startup temp cleanup failed", zap.Error(err))
	} else if removed > 0 {
		logger.Info("🧹 removed stale temp files", zap.Int("count", removed))
	}

	rules, err := configs.LoadRules(configs.RULES_FILE)
	if err != nil {
		logger.Fatal("Failed to load rules", zap.Error(err))
	}

	ctx := context.Background()

	// Step 1.5: Connect MongoDB when any component needs it
	if configs.STORE_BACKEND == "mongo" || configs.LEDGER_BACKEND == "mongo" || configs.CLIENTS_SOURCE == "mongo" {
		if err := storage.InitMongoDB(); err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer storage.CloseMongoDB()
	}

	// Step 2: Conversation and rate-limit store
	kv := openKVStore(logger)
	defer kv.Close()

	// Step 3: Payment ledger
	backend, closeBackend := openLedgerBackend(ctx, logger)
	defer closeBackend()
	payments := ledger.New(backend)

	// Step 4: Client registry behind a TTL cache
	var source storage.ClientSource
	switch configs.CLIENTS_SOURCE {
	case "mongo":
		source = matcher.NewMongoRegistry(storage.GetMongoDB().Collection(clientsCollection))
	default:
		source = matcher.NewFileRegistry(configs.CLIENTS_FILE)
	}
	clients := storage.NewClientCache(source, time.Duration(configs.CLIENT_CACHE_TTL_MINUTES)*time.Minute)

	// Step 5: OCR and speech providers
	ocr, err := ai.CreateOCRProviderWithFallback()
	if err != nil {
		logger.Fatal("Failed to create OCR provider", zap.Error(err))
	}

	deps := conversation.Deps{
		States:      conversation.NewStateStore(kv),
		Matcher:     matcher.New(clients, matcher.OptionsFromRules(rules)),
		Classifier:  classifier.New(rules),
		Extractor:   extractor.New(rules),
		Ledger:      payments,
		OCR:         ocr,
		Transcriber: ai.CreateTranscriber(),
		Limiter:     ratelimit.NewUserLimiter(kv, configs.MAX_MESSAGES_PER_MINUTE),
	}

	if configs.MINIO_ENDPOINT != "" {
		archive, err := storage.NewReceiptArchive(configs.MINIO_ENDPOINT, configs.MINIO_ACCESS_KEY,
			configs.MINIO_SECRET_KEY, configs.MINIO_BUCKET, configs.MINIO_USE_SSL)
		if err != nil {
			logger.Warn("receipt archive disabled", zap.Error(err))
		} else {
			deps.Archive = archive
		}
	}

	if debts, err := ledger.LoadDebtBook(configs.DEBT_FILE); err != nil {
		logger.Warn("debt lookup disabled", zap.String("file", configs.DEBT_FILE), zap.Error(err))
	} else {
		deps.Debts = debts
		logger.Info("debt book loaded", zap.Int("clients", debts.Len()))
	}

	// Step 6: WhatsApp channel and the bot
	client := whatsapp.NewClient(configs.WHATSAPP_API_BASE, configs.WHATSAPP_API_VERSION,
		configs.PHONE_NUMBER_ID, configs.META_ACCESS_TOKEN)
	deps.Messenger = client
	deps.Notifier = conversation.NewNotifier(client, configs.GRUPO_SOPORTE_ID, configs.SUPPORT_UTC_OFFSET_HOURS)

	bot := conversation.New(deps, conversation.Options{
		AdminIDs:          configs.ADMIN_USER_IDS,
		UploadDir:         configs.UPLOAD_DIR,
		TempMaxAge:        tempMaxAge,
		MaxImageDimension: configs.MAX_IMAGE_DIMENSION,
	})

	server := api.NewServer(bot, payments, api.Config{
		VerifyToken: configs.META_VERIFY_TOKEN,
		JWTSecret:   configs.JWT_SECRET,
		UploadDir:   configs.UPLOAD_DIR,
		TempMaxAge:  tempMaxAge,
	})

	// Step 7: Setup HTTP server with timeouts
	srv := &http.Server{
		Addr:           ":" + configs.PORT,
		Handler:        server.Router(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   3 * time.Minute, // OCR of a receipt can take a while
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("🚀 Starting server", zap.String("port", configs.PORT))
		logger.Info("API Endpoints: GET/POST /whatsapp, GET /health, GET /api/v1/admin/payments, POST /api/v1/admin/cleanup")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func openKVStore(logger *zap.Logger) storage.KVStore {
	switch configs.STORE_BACKEND {
	case "mongo":
		logger.Info("conversation store: mongo")
		return storage.NewMongoStore(storage.GetMongoDB())
	case "memory":
		logger.Warn("conversation store: memory, state is lost on restart")
		return storage.NewMemoryStore()
	default:
		store, err := storage.OpenBoltStore(configs.BOLT_PATH)
		if err != nil {
			logger.Fatal("Failed to open bolt store", zap.String("path", configs.BOLT_PATH), zap.Error(err))
		}
		logger.Info("conversation store: bolt", zap.String("path", configs.BOLT_PATH))
		return store
	}
}

func openLedgerBackend(ctx context.Context, logger *zap.Logger) (ledger.Backend, func()) {
	switch configs.LEDGER_BACKEND {
	case "mongo":
		backend, err := ledger.NewMongoBackend(ctx, storage.GetMongoDB())
		if err != nil {
			logger.Fatal("Failed to open mongo ledger", zap.Error(err))
		}
		return backend, func() {}
	case "postgres":
		pool, err := ledger.NewPool(ctx, configs.DATABASE_URL)
		if err != nil {
			logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		backend, err := ledger.NewPostgresBackend(ctx, pool)
		if err != nil {
			pool.Close()
			logger.Fatal("Failed to prepare payments table", zap.Error(err))
		}
		return backend, pool.Close
	default:
		logger.Info("ledger: csv", zap.String("path", configs.LEDGER_CSV_PATH))
		return ledger.NewCSVBackend(configs.LEDGER_CSV_PATH), func() {}
	}
}
