package config

import (
	"math"
	"os"
	"testing"
	"time"
)

func TestGetModelPricing_KnownModel(t *testing.T) {
	cfg := Load() // Load actual config with embedded prices

	pricing := cfg.GetModelPricing("gpt-4.1-mini")

	if pricing.Standard.Input != 0.40 {
		t.Errorf("expected standard input price 0.40, got %f", pricing.Standard.Input)
	}

	if pricing.Standard.Output != 1.60 {
		t.Errorf("expected standard output price 1.60, got %f", pricing.Standard.Output)
	}

	// Batch pricing should be 50% of standard
	if pricing.Batch.Input != 0.20 || pricing.Batch.Output != 0.80 {
		t.Errorf("unexpected batch pricing %+v", pricing.Batch)
	}
}

func TestGetModelPricing_GeminiModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("gemini-2.5-flash")

	if pricing.Standard.Input != 0.30 {
		t.Errorf("expected gemini standard input 0.30, got %f", pricing.Standard.Input)
	}

	if pricing.Standard.Output != 2.50 {
		t.Errorf("expected gemini standard output 2.50, got %f", pricing.Standard.Output)
	}
}

func TestGetModelPricing_LocalModel(t *testing.T) {
	cfg := Load()

	if _, ok := cfg.Prices.Models["llama3.2:3b"]; !ok {
		t.Fatal("expected local model to be listed")
	}

	pricing := cfg.GetModelPricing("llama3.2:3b")
	if pricing.Standard.Input != 0 || pricing.Standard.Output != 0 {
		t.Errorf("expected local model to be free, got %+v", pricing.Standard)
	}
}

func TestGetModelPricing_UnknownModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("unknown-model-xyz")

	if pricing != (ModelPricing{}) {
		t.Errorf("expected zero pricing for unknown model, got %+v", pricing)
	}
}

func TestRequestPricing_Cost(t *testing.T) {
	p := RequestPricing{Input: 0.40, Output: 1.60}

	// 1M input tokens and 500k output tokens
	got := p.Cost(1_000_000, 500_000)
	if math.Abs(got-1.2) > 1e-9 {
		t.Errorf("expected cost 1.2, got %f", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"DOGCEO_URL", "THEDOGAPI_URL", "THEDOGAPI_KEY", "WIKIPEDIA_URL",
		"FACE_DETECTOR_URL", "FACE_DETECTOR_TIMEOUT_MS", "DATABASE_URL",
		"CALIBRATION_BATCH_SIZE", "CALIBRATION_PHOTOS", "CALIBRATION_DELAY_MS",
		"LOG_LEVEL", "WEB_PORT", "WEB_HOST", "WEB_ALLOWED_ORIGINS",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.DogAPI.URL != "https://dog.ceo" {
		t.Errorf("expected default dog.ceo URL, got '%s'", cfg.DogAPI.URL)
	}
	if cfg.TheDogAPI.APIKey != "" {
		t.Errorf("expected empty API key, got '%s'", cfg.TheDogAPI.APIKey)
	}
	if cfg.FaceDetector.URL != "" || cfg.FaceDetector.Timeout != 5*time.Second {
		t.Errorf("unexpected face detector config %+v", cfg.FaceDetector)
	}
	if cfg.Calibration.BatchSize != 5 || cfg.Calibration.Photos != 4 || cfg.Calibration.Delay != time.Second {
		t.Errorf("unexpected calibration config %+v", cfg.Calibration)
	}
	if cfg.Database.MaxOpenConns != 25 || cfg.Database.MaxIdleConns != 5 {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level info, got '%s'", cfg.Log.Level)
	}
	if cfg.Web.Port != 8080 || cfg.Web.Host != "0.0.0.0" || len(cfg.Web.AllowedOrigins) != 0 {
		t.Errorf("unexpected web config %+v", cfg.Web)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("DOGCEO_URL", "http://dogs.local")
	t.Setenv("THEDOGAPI_KEY", "live_key")
	t.Setenv("FACE_DETECTOR_URL", "http://faces:8000")
	t.Setenv("FACE_DETECTOR_TIMEOUT_MS", "2500")
	t.Setenv("CALIBRATION_BATCH_SIZE", "10")
	t.Setenv("CALIBRATION_DELAY_MS", "250")
	t.Setenv("WEB_PORT", "9000")
	t.Setenv("WEB_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()

	if cfg.DogAPI.URL != "http://dogs.local" {
		t.Errorf("expected custom dog.ceo URL, got '%s'", cfg.DogAPI.URL)
	}
	if cfg.TheDogAPI.APIKey != "live_key" {
		t.Errorf("expected API key 'live_key', got '%s'", cfg.TheDogAPI.APIKey)
	}
	if cfg.FaceDetector.Timeout != 2500*time.Millisecond {
		t.Errorf("expected 2.5s timeout, got %v", cfg.FaceDetector.Timeout)
	}
	if cfg.Calibration.BatchSize != 10 || cfg.Calibration.Delay != 250*time.Millisecond {
		t.Errorf("unexpected calibration config %+v", cfg.Calibration)
	}
	if cfg.Web.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Web.Port)
	}
	if len(cfg.Web.AllowedOrigins) != 2 || cfg.Web.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.Web.AllowedOrigins)
	}
}

func TestLoad_InvalidInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"non-numeric", "invalid"},
		{"negative", "-100"},
		{"zero", "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("CALIBRATION_PHOTOS", tc.value)

			cfg := Load()

			// Should fall back to default
			if cfg.Calibration.Photos != 4 {
				t.Errorf("expected default 4 for %q, got %d", tc.value, cfg.Calibration.Photos)
			}
		})
	}
}

func TestLoad_ProviderKeys(t *testing.T) {
	t.Setenv("OPENAI_TOKEN", "sk-test-token-123")
	t.Setenv("GEMINI_API_KEY", "gemini-api-key-456")
	t.Setenv("OLLAMA_URL", "http://localhost:11434")
	t.Setenv("OLLAMA_MODEL", "llama3.2:3b")

	cfg := Load()

	if cfg.OpenAI.Token != "sk-test-token-123" {
		t.Errorf("expected OpenAI token 'sk-test-token-123', got '%s'", cfg.OpenAI.Token)
	}
	if cfg.Gemini.APIKey != "gemini-api-key-456" {
		t.Errorf("expected Gemini API key 'gemini-api-key-456', got '%s'", cfg.Gemini.APIKey)
	}
	if cfg.Ollama.URL != "http://localhost:11434" || cfg.Ollama.Model != "llama3.2:3b" {
		t.Errorf("unexpected Ollama config %+v", cfg.Ollama)
	}
}
