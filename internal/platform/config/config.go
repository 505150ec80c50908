package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port              string
	GinMode           string
	DataFile          string
	DataEncoding      string
	HistogramBinWidth float64
	AllowedOrigins    string
}

// Load reads environment variables into a Config with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		DataFile:       strings.TrimSpace(os.Getenv("DATA_FILE")),
		DataEncoding:   getEnv("DATA_ENCODING", "utf-8"),
		AllowedOrigins: strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
	}

	binWidth, err := parseFloatEnv("DASH_HISTOGRAM_BIN_WIDTH", 100000)
	if err != nil {
		return Config{}, fmt.Errorf("parse DASH_HISTOGRAM_BIN_WIDTH: %w", err)
	}
	cfg.HistogramBinWidth = binWidth

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DataFile == "" {
		return errors.New("DATA_FILE is required (path to the listings CSV)")
	}
	if c.HistogramBinWidth <= 0 {
		return errors.New("DASH_HISTOGRAM_BIN_WIDTH must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func parseFloatEnv(key string, defaultVal float64) (float64, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
