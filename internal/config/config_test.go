package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.OCR.Timeout != 300*time.Second {
		t.Errorf("OCR timeout = %v, want 300s", cfg.OCR.Timeout)
	}
	if cfg.OCR.BaseURL != "https://api.mistral.ai" {
		t.Errorf("BaseURL = %q", cfg.OCR.BaseURL)
	}
	if cfg.OCR.Model != "mistral-ocr-latest" {
		t.Errorf("Model = %q", cfg.OCR.Model)
	}

	wantOrigins := []string{
		"http://localhost",
		"http://localhost:8000",
		"http://localhost:8080",
		"http://127.0.0.1:5500",
	}
	if len(cfg.CORS.AllowedOrigins) != len(wantOrigins) {
		t.Fatalf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	for i, want := range wantOrigins {
		if cfg.CORS.AllowedOrigins[i] != want {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.CORS.AllowedOrigins[i], want)
		}
	}

	if cfg.Storage.MaxUploadSize != 50*1024*1024 {
		t.Errorf("MaxUploadSize = %d", cfg.Storage.MaxUploadSize)
	}
	if cfg.Storage.FrontendDir != "./front" {
		t.Errorf("FrontendDir = %q", cfg.Storage.FrontendDir)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("OCR_CLIENT_TIMEOUT", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("MAX_UPLOAD_SIZE", "1048576")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Server.Port)
	}
	if cfg.OCR.Timeout != 30*time.Second {
		t.Errorf("OCR timeout = %v, want 30s", cfg.OCR.Timeout)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://staging.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Storage.MaxUploadSize != 1048576 {
		t.Errorf("MaxUploadSize = %d", cfg.Storage.MaxUploadSize)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("OCR_CLIENT_TIMEOUT", "not-a-duration")
	t.Setenv("MAX_UPLOAD_SIZE", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OCR.Timeout != 300*time.Second {
		t.Errorf("malformed duration should fall back, got %v", cfg.OCR.Timeout)
	}
	if cfg.Storage.MaxUploadSize != 50*1024*1024 {
		t.Errorf("malformed size should fall back, got %d", cfg.Storage.MaxUploadSize)
	}
}
