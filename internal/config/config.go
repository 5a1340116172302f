package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

type Config struct {
	DogAPI       DogAPIConfig
	TheDogAPI    TheDogAPIConfig
	Wikipedia    WikipediaConfig
	FaceDetector FaceDetectorConfig
	OpenAI       OpenAIConfig
	Gemini       GeminiConfig
	Ollama       OllamaConfig
	Database     DatabaseConfig
	Calibration  CalibrationConfig
	Log          LogConfig
	Web          WebConfig
	Prices       PricesConfig
}

type DogAPIConfig struct {
	URL string // defaults to https://dog.ceo
}

type TheDogAPIConfig struct {
	URL    string // defaults to https://api.thedogapi.com
	APIKey string // optional, anonymous requests when empty
}

type WikipediaConfig struct {
	URL string // defaults to https://en.wikipedia.org
}

type FaceDetectorConfig struct {
	URL     string // empty disables detection and forces the geometric fallback
	Timeout time.Duration
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type OllamaConfig struct {
	URL   string // empty disables the local describer
	Model string // defaults to llama3.2:3b
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL, empty keeps profiles in memory
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type CalibrationConfig struct {
	BatchSize int
	Photos    int
	Delay     time.Duration
}

type LogConfig struct {
	Level string // debug, info, warn, error
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Standard RequestPricing `yaml:"standard"`
	Batch    RequestPricing `yaml:"batch"`
}

type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// Cost returns the price in USD of the given token counts.
func (p RequestPricing) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*p.Input + float64(outputTokens)*p.Output) / 1_000_000
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	return &Config{
		DogAPI: DogAPIConfig{
			URL: envString("DOGCEO_URL", "https://dog.ceo"),
		},
		TheDogAPI: TheDogAPIConfig{
			URL:    envString("THEDOGAPI_URL", "https://api.thedogapi.com"),
			APIKey: os.Getenv("THEDOGAPI_KEY"),
		},
		Wikipedia: WikipediaConfig{
			URL: envString("WIKIPEDIA_URL", "https://en.wikipedia.org"),
		},
		FaceDetector: FaceDetectorConfig{
			URL:     os.Getenv("FACE_DETECTOR_URL"),
			Timeout: time.Duration(envInt("FACE_DETECTOR_TIMEOUT_MS", 5000)) * time.Millisecond,
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Calibration: CalibrationConfig{
			BatchSize: envInt("CALIBRATION_BATCH_SIZE", 5),
			Photos:    envInt("CALIBRATION_PHOTOS", 4),
			Delay:     time.Duration(envInt("CALIBRATION_DELAY_MS", 1000)) * time.Millisecond,
		},
		Log: LogConfig{
			Level: envString("LOG_LEVEL", "info"),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Prices: prices,
	}
}

// GetModelPricing returns pricing for a specific model, with fallback defaults
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	// Return zero pricing if model not found
	return ModelPricing{}
}
