// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	// WhatsApp Cloud API Configuration
	META_ACCESS_TOKEN    string
	PHONE_NUMBER_ID      string
	META_VERIFY_TOKEN    string
	WHATSAPP_API_VERSION string
	WHATSAPP_API_BASE    string

	// Support group that receives tickets and payment notices
	GRUPO_SOPORTE_ID         string
	SUPPORT_UTC_OFFSET_HOURS int

	// Users allowed to run admin commands (/limpieza)
	ADMIN_USER_IDS []string

	// Server Configuration
	PORT       string
	UPLOAD_DIR string
	LOG_LEVEL  string
	JWT_SECRET string

	// Conversation / rate-limit store: "bolt", "mongo" or "memory"
	STORE_BACKEND string
	BOLT_PATH     string

	// MongoDB Configuration
	MONGO_URI     string
	MONGO_DB_NAME string

	// Payment ledger: "csv", "mongo" or "postgres"
	LEDGER_BACKEND  string
	LEDGER_CSV_PATH string
	DATABASE_URL    string

	// Client registry
	CLIENTS_SOURCE           string // "file" or "mongo"
	CLIENTS_FILE             string
	CLIENT_CACHE_TTL_MINUTES int
	DEBT_FILE                string

	// OCR providers
	OCR_PROVIDER       string
	GEMINI_API_KEY     string
	OCR_MODEL_NAME     string
	MISTRAL_API_KEY    string
	MISTRAL_MODEL_NAME string
	OCR_TIMEOUT        int // seconds

	// Speech-to-text
	OPENAI_API_KEY string
	WHISPER_MODEL  string
	SPEECH_LANG    string

	// Receipt archive (MinIO). Empty endpoint disables archiving.
	MINIO_ENDPOINT   string
	MINIO_ACCESS_KEY string
	MINIO_SECRET_KEY string
	MINIO_BUCKET     string
	MINIO_USE_SSL    bool

	// Heuristics file (YAML), optional
	RULES_FILE string

	// Housekeeping / limits
	MAX_MESSAGES_PER_MINUTE int
	TEMP_CLEANUP_HOURS      int
	MAX_IMAGE_DIMENSION     int
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Required: Meta access token
	META_ACCESS_TOKEN = getEnv("META_ACCESS_TOKEN", "")
	if META_ACCESS_TOKEN == "" {
		log.Fatal("META_ACCESS_TOKEN environment variable is required")
	}

	PHONE_NUMBER_ID = getEnv("PHONE_NUMBER_ID", "660511147155188")
	META_VERIFY_TOKEN = getEnv("META_VERIFY_TOKEN", "TRONCALNET_BOT_2025")
	WHATSAPP_API_VERSION = getEnv("WHATSAPP_API_VERSION", "v19.0")
	WHATSAPP_API_BASE = getEnv("WHATSAPP_API_BASE", "https://graph.facebook.com")

	GRUPO_SOPORTE_ID = getEnv("GRUPO_SOPORTE_ID", "")
	if GRUPO_SOPORTE_ID == "" {
		log.Println("⚠️  GRUPO_SOPORTE_ID is not set, support notifications are disabled")
	}
	SUPPORT_UTC_OFFSET_HOURS = getEnvInt("SUPPORT_UTC_OFFSET_HOURS", -5)
	ADMIN_USER_IDS = getEnvList("ADMIN_USER_IDS")

	PORT = getEnv("PORT", "5000")
	UPLOAD_DIR = getEnv("UPLOAD_DIR", "temp_images")
	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
	JWT_SECRET = getEnv("JWT_SECRET", "")

	STORE_BACKEND = strings.ToLower(getEnv("STORE_BACKEND", "bolt"))
	BOLT_PATH = getEnv("BOLT_PATH", "data/bot.bolt")

	MONGO_URI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	MONGO_DB_NAME = getEnv("MONGO_DB_NAME", "troncalnet_bot")

	LEDGER_BACKEND = strings.ToLower(getEnv("LEDGER_BACKEND", "csv"))
	LEDGER_CSV_PATH = getEnv("LEDGER_CSV_PATH", "pagos_registrados.csv")
	DATABASE_URL = getEnv("DATABASE_URL", "")

	CLIENTS_SOURCE = strings.ToLower(getEnv("CLIENTS_SOURCE", "file"))
	CLIENTS_FILE = getEnv("CLIENTS_FILE", "base_clientes.txt")
	CLIENT_CACHE_TTL_MINUTES = getEnvInt("CLIENT_CACHE_TTL_MINUTES", 5)
	DEBT_FILE = getEnv("DEBT_FILE", "deuda_clientes.csv")

	OCR_PROVIDER = strings.ToLower(getEnv("OCR_PROVIDER", "gemini"))
	GEMINI_API_KEY = getEnv("GEMINI_API_KEY", "")
	OCR_MODEL_NAME = getEnv("OCR_MODEL_NAME", "gemini-2.5-flash")
	MISTRAL_API_KEY = getEnv("MISTRAL_API_KEY", "")
	MISTRAL_MODEL_NAME = getEnv("MISTRAL_MODEL_NAME", "mistral-ocr-latest")
	OCR_TIMEOUT = getEnvInt("OCR_TIMEOUT", 60)

	OPENAI_API_KEY = getEnv("OPENAI_API_KEY", "")
	WHISPER_MODEL = getEnv("WHISPER_MODEL", "whisper-1")
	SPEECH_LANG = getEnv("SPEECH_LANG", "es")

	MINIO_ENDPOINT = getEnv("MINIO_ENDPOINT", "")
	MINIO_ACCESS_KEY = getEnv("MINIO_ACCESS_KEY", "")
	MINIO_SECRET_KEY = getEnv("MINIO_SECRET_KEY", "")
	MINIO_BUCKET = getEnv("MINIO_BUCKET", "comprobantes")
	MINIO_USE_SSL = getEnvBool("MINIO_USE_SSL", false)

	RULES_FILE = getEnv("RULES_FILE", "")

	MAX_MESSAGES_PER_MINUTE = getEnvInt("MAX_MESSAGES_PER_MINUTE", 10)
	TEMP_CLEANUP_HOURS = getEnvInt("TEMP_CLEANUP_HOURS", 24)
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2000)

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
