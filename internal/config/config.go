package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mcuadros/go-defaults"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Quality engine
	ModelInfoPath string
	MaxWorkers    int
	CropFrame     bool
	GaborEnergy   bool

	// Persistence and sources
	ResultsDBPath    string
	LocalImageRoot   string
	AzureAccountName string
	AzureAccountKey  string

	LogFile   string
	LogMaxAge time.Duration
}

// fileConfig mirrors the optional TOML configuration file. Durations are
// kept as strings so the file reads the same as the environment.
type fileConfig struct {
	Host               string `toml:"host" default:"0.0.0.0"`
	Port               string `toml:"port" default:"8080"`
	RequestTimeout     string `toml:"request_timeout" default:"30s"`
	ImageFetchTimeout  string `toml:"image_fetch_timeout" default:"15s"`
	AnalysisTimeout    string `toml:"analysis_timeout" default:"20s"`
	MaxRequestBodySize int64  `toml:"max_request_body_size" default:"10485760"`
	ModelInfoPath      string `toml:"model_info_path" default:"model/nfiq2_rf.toml"`
	MaxWorkers         int    `toml:"max_workers" default:"0"`
	CropFrame          bool   `toml:"crop_frame" default:"true"`
	GaborEnergy        bool   `toml:"gabor_energy"`
	ResultsDBPath      string `toml:"results_db_path"`
	LocalImageRoot     string `toml:"local_image_root"`
	AzureAccountName   string `toml:"azure_account_name"`
	AzureAccountKey    string `toml:"azure_account_key"`
	LogFile            string `toml:"log_file"`
	LogMaxAge          string `toml:"log_max_age" default:"168h"`
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv builds the configuration from defaults, then the file named by
// CONFIG_FILE (if any), then environment variables.
func LoadFromEnv() (*Config, error) {
	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", file.Host),
		Port:               getEnvOrDefault("PORT", file.Port),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", mustDuration(file.RequestTimeout, 30*time.Second)),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", mustDuration(file.ImageFetchTimeout, 15*time.Second)),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", mustDuration(file.AnalysisTimeout, 20*time.Second)),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", file.MaxRequestBodySize),
		ModelInfoPath:      getEnvOrDefault("MODEL_INFO_PATH", file.ModelInfoPath),
		MaxWorkers:         int(parseIntOrDefault("MAX_WORKERS", int64(file.MaxWorkers))),
		CropFrame:          parseBoolOrDefault("CROP_FRAME", file.CropFrame),
		GaborEnergy:        parseBoolOrDefault("GABOR_ENERGY", file.GaborEnergy),
		ResultsDBPath:      getEnvOrDefault("RESULTS_DB_PATH", file.ResultsDBPath),
		LocalImageRoot:     getEnvOrDefault("LOCAL_IMAGE_ROOT", file.LocalImageRoot),
		AzureAccountName:   getEnvOrDefault("AZURE_ACCOUNT_NAME", file.AzureAccountName),
		AzureAccountKey:    getEnvOrDefault("AZURE_ACCOUNT_KEY", file.AzureAccountKey),
		LogFile:            getEnvOrDefault("LOG_FILE", file.LogFile),
		LogMaxAge:          parseDurationOrDefault("LOG_MAX_AGE", mustDuration(file.LogMaxAge, 7*24*time.Hour)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges of the loaded values.
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	if c.MaxWorkers < 0 {
		return fmt.Errorf("MAX_WORKERS must be >= 0 (got %d)", c.MaxWorkers)
	}
	if (c.AzureAccountName == "") != (c.AzureAccountKey == "") {
		return fmt.Errorf("AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY must be set together")
	}
	return nil
}

func loadFile(path string) (*fileConfig, error) {
	file := &fileConfig{}
	defaults.SetDefaults(file)

	if strings.TrimSpace(path) == "" {
		return file, nil
	}
	if _, err := toml.DecodeFile(path, file); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return file, nil
}

func mustDuration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
