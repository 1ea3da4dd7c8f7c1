package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	OCR     OCRConfig
	CORS    CORSConfig
	Storage StorageConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type OCRConfig struct {
	// Timeout bounds the whole external OCR exchange for one request.
	Timeout time.Duration
	BaseURL string
	Model   string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type StorageConfig struct {
	MaxUploadSize int64
	TempDir       string
	FrontendDir   string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			ReadTimeout: getDuration("READ_TIMEOUT", 30*time.Second),
			// Write timeout must outlive the OCR client timeout.
			WriteTimeout: getDuration("WRITE_TIMEOUT", 330*time.Second),
		},
		OCR: OCRConfig{
			Timeout: getDuration("OCR_CLIENT_TIMEOUT", 300*time.Second),
			BaseURL: getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai"),
			Model:   getEnv("MISTRAL_OCR_MODEL", "mistral-ocr-latest"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{
				"http://localhost",
				"http://localhost:8000",
				"http://localhost:8080",
				"http://127.0.0.1:5500",
			}),
		},
		Storage: StorageConfig{
			MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 50*1024*1024), // 50MB
			TempDir:       getEnv("TEMP_DIR", os.TempDir()),
			FrontendDir:   getEnv("FRONTEND_DIR", "./front"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
