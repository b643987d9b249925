package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/studynotion-backend/internal/data/db"
	"github.com/yungbote/studynotion-backend/internal/observability"
	"github.com/yungbote/studynotion-backend/internal/platform/gcp"
)

const (
	MediaModeLocal = "local"
)

type Config struct {
	LogMode  string `mapstructure:"LOG_MODE"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	DBDriver         string `mapstructure:"DB_DRIVER"`
	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string `mapstructure:"POSTGRES_PORT"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresName     string `mapstructure:"POSTGRES_NAME"`
	PostgresSSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	SQLitePath       string `mapstructure:"SQLITE_PATH"`

	MediaMode           string `mapstructure:"MEDIA_MODE"`
	MediaRoot           string `mapstructure:"MEDIA_ROOT"`
	MediaPublicPrefix   string `mapstructure:"MEDIA_PUBLIC_PREFIX"`
	MediaGCSBucket      string `mapstructure:"MEDIA_GCS_BUCKET"`
	MediaCDNDomain      string `mapstructure:"MEDIA_CDN_DOMAIN"`
	StorageEmulatorHost string `mapstructure:"STORAGE_EMULATOR_HOST"`
	GCPCredentials      string `mapstructure:"GCP_CREDENTIALS_JSON"`
	FFProbePath         string `mapstructure:"FFPROBE_PATH"`
	MaxUploadMB         int64  `mapstructure:"MAX_UPLOAD_MB"`

	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`
	CORSOrigins   string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	JWTSecretKey  string `mapstructure:"JWT_SECRET_KEY"`

	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	CourseCacheTTLSecs  int    `mapstructure:"COURSE_CACHE_TTL"`
	DraftGateEnabled    bool   `mapstructure:"DRAFT_GATE_ENABLED"`
	MetricsEnabled      bool   `mapstructure:"METRICS_ENABLED"`
	DBStatsIntervalSecs int    `mapstructure:"DB_STATS_INTERVAL"`

	OtelEnabled     bool    `mapstructure:"OTEL_ENABLED"`
	OtelServiceName string  `mapstructure:"OTEL_SERVICE_NAME"`
	OtelEnvironment string  `mapstructure:"OTEL_ENVIRONMENT"`
	OtelEndpoint    string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `mapstructure:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OtelSampleRatio float64 `mapstructure:"OTEL_SAMPLE_RATIO"`
}

var configDefaults = map[string]any{
	"LOG_MODE":                    "development",
	"HTTP_ADDR":                   ":8080",
	"DB_DRIVER":                   db.DriverPostgres,
	"POSTGRES_HOST":               "localhost",
	"POSTGRES_PORT":               "5432",
	"POSTGRES_USER":               "postgres",
	"POSTGRES_PASSWORD":           "",
	"POSTGRES_NAME":               "studynotion",
	"POSTGRES_SSLMODE":            "disable",
	"SQLITE_PATH":                 "./studynotion.db",
	"MEDIA_MODE":                  MediaModeLocal,
	"MEDIA_ROOT":                  "./uploads",
	"MEDIA_PUBLIC_PREFIX":         "/uploads",
	"MEDIA_GCS_BUCKET":            "",
	"MEDIA_CDN_DOMAIN":            "",
	"STORAGE_EMULATOR_HOST":       "",
	"GCP_CREDENTIALS_JSON":        "",
	"FFPROBE_PATH":                "ffprobe",
	"MAX_UPLOAD_MB":               512,
	"PUBLIC_BASE_URL":             "",
	"CORS_ALLOWED_ORIGINS":        "",
	"JWT_SECRET_KEY":              "",
	"REDIS_ADDR":                  "",
	"COURSE_CACHE_TTL":            600,
	"DRAFT_GATE_ENABLED":          true,
	"METRICS_ENABLED":             false,
	"DB_STATS_INTERVAL":           15,
	"OTEL_ENABLED":                false,
	"OTEL_SERVICE_NAME":           "studynotion-backend",
	"OTEL_ENVIRONMENT":            "development",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"OTEL_EXPORTER_OTLP_HEADERS":  "",
	"OTEL_EXPORTER_OTLP_INSECURE": false,
	"OTEL_SAMPLE_RATIO":           1.0,
}

// LoadConfig reads an optional app.env from path, then the environment.
// Environment values win over the file.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.AddConfigPath(path)
	}
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, def := range configDefaults {
		v.SetDefault(key, def)
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER %q: allowed %s, %s", c.DBDriver, db.DriverPostgres, db.DriverSQLite)
	}
	if c.MediaMode != MediaModeLocal {
		if _, err := gcp.ParseStorageMode(c.MediaMode); err != nil {
			return err
		}
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func (c Config) DB() db.Config {
	return db.Config{
		Driver: c.DBDriver,
		Postgres: db.PostgresConfig{
			Host:     c.PostgresHost,
			Port:     c.PostgresPort,
			User:     c.PostgresUser,
			Password: c.PostgresPassword,
			Name:     c.PostgresName,
			SSLMode:  c.PostgresSSLMode,
		},
		SQLitePath: c.SQLitePath,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.OtelEnvironment,
		Endpoint:    c.OtelEndpoint,
		Headers:     c.OtelHeaders,
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

func (c Config) CourseCacheTTL() time.Duration {
	return time.Duration(c.CourseCacheTTLSecs) * time.Second
}

func (c Config) MaxBodyBytes() int64 { return c.MaxUploadMB << 20 }

func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
