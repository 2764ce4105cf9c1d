package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort  string
	MaxFileSize int64

	TesseractDataPath string
	TesseractLanguage string
	PaddleAPIURL      string
	// OCREngines is the ordered recognizer chain, e.g. ["paddle", "tesseract"].
	OCREngines []string
	// VisionCredentialsFile is a service account key; empty uses default credentials.
	VisionCredentialsFile string

	GeminiAPIKey string
	GeminiModel  string

	RedisURL    string
	CacheTTL    time.Duration
	DatabaseURL string

	ExtractTimeout time.Duration
	ExtractRetries int
	Workers        int
	MaxDocuments   int

	Rules Rules
}

// Rules is the validation policy handed to the validator at construction.
type Rules struct {
	NameThreshold       float64 `yaml:"name_threshold"`
	FatherNameThreshold float64 `yaml:"fathers_name_threshold"`
	AddressThreshold    float64 `yaml:"address_threshold"`
	// MaxFailedRules is the largest failure count that still verifies.
	MaxFailedRules      int  `yaml:"max_failed_rules"`
	PhoneNationalLength int  `yaml:"phone_national_length"`
	RequirePAN          bool `yaml:"require_pan"`
	RequireAadhaar      bool `yaml:"require_aadhaar"`
	// SortNameTokens compares names with their words sorted, so that
	// "SHARMA RAHUL" and "RAHUL SHARMA" score 100.
	SortNameTokens bool `yaml:"sort_name_tokens"`
}

// DefaultRules returns the stock verification policy.
func DefaultRules() Rules {
	return Rules{
		NameThreshold:       80,
		FatherNameThreshold: 80,
		AddressThreshold:    70,
		MaxFailedRules:      2,
		PhoneNationalLength: 10,
		RequirePAN:          true,
		RequireAadhaar:      true,
	}
}

// Validate rejects policies the validator cannot apply.
func (r Rules) Validate() error {
	var errs []error
	thresholds := []struct {
		name  string
		value float64
	}{
		{"name_threshold", r.NameThreshold},
		{"fathers_name_threshold", r.FatherNameThreshold},
		{"address_threshold", r.AddressThreshold},
	}
	for _, th := range thresholds {
		if th.value < 0 || th.value > 100 {
			errs = append(errs, fmt.Errorf("%s must be within 0-100, got %v", th.name, th.value))
		}
	}
	if r.MaxFailedRules < 0 {
		errs = append(errs, fmt.Errorf("max_failed_rules must not be negative, got %d", r.MaxFailedRules))
	}
	if r.PhoneNationalLength <= 0 {
		errs = append(errs, fmt.Errorf("phone_national_length must be positive, got %d", r.PhoneNationalLength))
	}
	return errors.Join(errs...)
}

// LoadRules overlays the YAML file at path on DefaultRules.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return rules, nil
}

// LoadConfig reads configuration from the environment, after loading a .env
// file when one is present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	rules, err := LoadRules(os.Getenv("KYC_RULES_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		MaxFileSize:           int64(getEnvInt("MAX_FILE_SIZE_MB", 10)) << 20,
		TesseractDataPath:     getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
		TesseractLanguage:     getEnv("TESSERACT_LANG", "eng"),
		PaddleAPIURL:          os.Getenv("PADDLEOCR_API_URL"),
		OCREngines:            splitList(getEnv("OCR_ENGINES", "tesseract")),
		VisionCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash-lite"),
		RedisURL:              os.Getenv("REDIS_URL"),
		CacheTTL:              getEnvDuration("EXTRACTION_CACHE_TTL", 24*time.Hour),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		ExtractTimeout:        getEnvDuration("EXTRACT_TIMEOUT", 60*time.Second),
		ExtractRetries:        getEnvInt("EXTRACT_RETRIES", 2),
		Workers:               getEnvInt("KYC_WORKERS", 4),
		MaxDocuments:          getEnvInt("KYC_MAX_DOCUMENTS", 3),
		Rules:                 rules,
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
