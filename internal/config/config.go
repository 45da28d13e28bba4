package config

import (
	"os"
	"strconv"
	"time"

	"geneexplorer/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Data   DataConfig
	Cache  CacheConfig
	Papers PapersConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds the workbook location and sheet names
type DataConfig struct {
	WorkbookPath string
	PrimarySheet string
	ValuesSheet  string
}

// CacheConfig holds memoization settings for the spreadsheet loaders
type CacheConfig struct {
	GeneCacheSize int
}

// PapersConfig holds literature gateway settings
type PapersConfig struct {
	MyGeneBaseURL string
	EutilsBaseURL string
	WaitBudget    time.Duration
	FetchTimeout  time.Duration
	MaxPapers     int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			WorkbookPath: getEnvOrDefault("DATA_FILE", "static/data/NIHMS1635539-supplement-1635539_Sup_tab_4.xlsx"),
			PrimarySheet: getEnvOrDefault("PRIMARY_SHEET", "S4B limma results"),
			ValuesSheet:  getEnvOrDefault("VALUES_SHEET", "S4A values"),
		},
		Cache: CacheConfig{
			GeneCacheSize: getEnvIntOrDefault("GENE_CACHE_SIZE", 50),
		},
		Papers: PapersConfig{
			MyGeneBaseURL: getEnvOrDefault("MYGENE_BASE_URL", "https://mygene.info/v3"),
			EutilsBaseURL: getEnvOrDefault("EUTILS_BASE_URL", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"),
			WaitBudget:    getEnvDurationOrDefault("PAPERS_WAIT_BUDGET", 3*time.Second),
			FetchTimeout:  getEnvDurationOrDefault("PAPERS_FETCH_TIMEOUT", 20*time.Second),
			MaxPapers:     getEnvIntOrDefault("PAPERS_MAX", 5),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Data.WorkbookPath == "" {
		return errors.ConfigInvalid("workbook path is required")
	}
	if config.Cache.GeneCacheSize <= 0 {
		return errors.ConfigInvalid("gene cache size must be positive")
	}
	if config.Papers.WaitBudget <= 0 {
		return errors.ConfigInvalid("papers wait budget must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
