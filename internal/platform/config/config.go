package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	RenderEngineNative      = "native"
	RenderEngineWkhtmltopdf = "wkhtmltopdf"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	Addr               string
	Environment        string
	DatabaseURL        string
	MigrationsDir      string
	RunMigrations      bool
	MaxUploadBytes     int64
	RateLimitPerMinute int
	MetricsEnabled     bool

	RenderEngine    string
	WkhtmltopdfPath string
	RenderTimeout   time.Duration
	PageSize        string
	PageMarginMM    int

	StorageDriver     string
	StorageDir        string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3Prefix          string
	DataEncryptionKey string

	EmailEnabled      bool
	EmailFrom         string
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SMTPUseTLS        bool
	MailRatePerSecond float64
	MailConcurrency   int

	CompanyFile    string
	CompanyName    string
	CompanyAddress string
	CompanyCity    string
	CompanyLogo    string
}

// Load reads the environment after applying an optional .env file. Values
// already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),

		RenderEngine:    strings.ToLower(getEnv("RENDER_ENGINE", RenderEngineNative)),
		WkhtmltopdfPath: getEnv("WKHTMLTOPDF_PATH", ""),
		RenderTimeout:   getEnvDuration("RENDER_TIMEOUT", 30*time.Second),
		PageSize:        getEnv("PAGE_SIZE", "A4"),
		PageMarginMM:    getEnvInt("PAGE_MARGIN_MM", 10),

		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverLocal)),
		StorageDir:        getEnv("STORAGE_DIR", "storage"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		DataEncryptionKey: getEnv("DATA_ENCRYPTION_KEY", ""),

		EmailEnabled:      getEnvBool("EMAIL_ENABLED", false),
		EmailFrom:         getEnv("EMAIL_FROM", "no-reply@example.com"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:        getEnvBool("SMTP_USE_TLS", true),
		MailRatePerSecond: getEnvFloat("MAIL_RATE_PER_SECOND", 2),
		MailConcurrency:   getEnvInt("MAIL_CONCURRENCY", 4),

		CompanyFile:    getEnv("COMPANY_FILE", ""),
		CompanyName:    getEnv("COMPANY_NAME", DefaultCompanyName),
		CompanyAddress: getEnv("COMPANY_ADDRESS", DefaultCompanyAddress),
		CompanyCity:    getEnv("COMPANY_CITY", DefaultCompanyCity),
		CompanyLogo:    getEnv("COMPANY_LOGO", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if c.Environment == "production" {
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if c.StorageDriver == StorageDriverLocal && strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.MaxUploadBytes < 1024 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	switch c.RenderEngine {
	case RenderEngineNative, RenderEngineWkhtmltopdf:
	default:
		return fmt.Errorf("RENDER_ENGINE must be %q or %q", RenderEngineNative, RenderEngineWkhtmltopdf)
	}
	if c.RenderTimeout <= 0 {
		return fmt.Errorf("RENDER_TIMEOUT must be positive")
	}
	if c.PageMarginMM < 0 {
		return fmt.Errorf("PAGE_MARGIN_MM must not be negative")
	}
	switch c.StorageDriver {
	case StorageDriverLocal:
		if strings.TrimSpace(c.StorageDir) == "" {
			return fmt.Errorf("STORAGE_DIR is required for local storage")
		}
	case StorageDriverS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER is s3")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageDriverLocal, StorageDriverS3)
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.MailRatePerSecond <= 0 {
		return fmt.Errorf("MAIL_RATE_PER_SECOND must be positive")
	}
	if c.MailConcurrency <= 0 {
		return fmt.Errorf("MAIL_CONCURRENCY must be positive")
	}
	return nil
}
