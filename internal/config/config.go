package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Supabase
	SupabaseURL          string `yaml:"supabase_url"`
	SupabaseServiceKey   string `yaml:"supabase_service_key"`
	SupabaseJWTSecret    string `yaml:"supabase_jwt_secret"`
	SupabasePhotoBucket  string `yaml:"supabase_photo_bucket"`
	SupabaseExportBucket string `yaml:"supabase_export_bucket"`

	// Database
	DatabaseURL string `yaml:"database_url"`

	// Export
	ExportMaxPhotosWarning   int  `yaml:"export_max_photos_warning"`
	ExportMinJPEGQuality     int  `yaml:"export_min_jpeg_quality"`
	ExportFetchMissingPhotos bool `yaml:"export_fetch_missing_photos"`
	ExportArchiveUpload      bool `yaml:"export_archive_upload"`

	// Uploads
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// Server
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	BaseURL     string `yaml:"base_url"`
}

func defaults() *Config {
	return &Config{
		SupabasePhotoBucket:      "project-photos",
		SupabaseExportBucket:     "electronic-deliveries",
		ExportMaxPhotosWarning:   3000,
		ExportMinJPEGQuality:     70,
		ExportFetchMissingPhotos: true,
		ExportArchiveUpload:      false,
		MaxUploadBytes:           32 << 20,
		LogLevel:                 "info",
		Port:                     "8080",
		Environment:              "development",
		BaseURL:                  "http://localhost:8080",
	}
}

// Load reads defaults, then the optional YAML file named by CONFIG_FILE, then
// environment variables. Environment values win.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.SupabaseURL = getEnv("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseServiceKey = getEnv("SUPABASE_SERVICE_KEY", c.SupabaseServiceKey)
	c.SupabaseJWTSecret = getEnv("SUPABASE_JWT_SECRET", c.SupabaseJWTSecret)
	c.SupabasePhotoBucket = getEnv("SUPABASE_PHOTO_BUCKET", c.SupabasePhotoBucket)
	c.SupabaseExportBucket = getEnv("SUPABASE_EXPORT_BUCKET", c.SupabaseExportBucket)

	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)

	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.BaseURL = getEnv("BASE_URL", c.BaseURL)

	var err error
	if c.ExportMaxPhotosWarning, err = getEnvInt("EXPORT_MAX_PHOTOS_WARNING", c.ExportMaxPhotosWarning); err != nil {
		return err
	}
	if c.ExportMinJPEGQuality, err = getEnvInt("EXPORT_MIN_JPEG_QUALITY", c.ExportMinJPEGQuality); err != nil {
		return err
	}
	if c.ExportFetchMissingPhotos, err = getEnvBool("EXPORT_FETCH_MISSING_PHOTOS", c.ExportFetchMissingPhotos); err != nil {
		return err
	}
	if c.ExportArchiveUpload, err = getEnvBool("EXPORT_ARCHIVE_UPLOAD", c.ExportArchiveUpload); err != nil {
		return err
	}
	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes))
	if err != nil {
		return err
	}
	c.MaxUploadBytes = int64(maxUpload)
	return nil
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if (c.SupabaseURL == "") != (c.SupabaseServiceKey == "") {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set together")
	}
	if c.ExportMinJPEGQuality < 1 || c.ExportMinJPEGQuality > 100 {
		return fmt.Errorf("EXPORT_MIN_JPEG_QUALITY must be between 1 and 100")
	}
	if c.ExportMaxPhotosWarning <= 0 {
		return fmt.Errorf("EXPORT_MAX_PHOTOS_WARNING must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// SupabaseEnabled reports whether storage and PostgREST clients can be built.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
