package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	SecretKey      []byte
	Algorithm      string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	CookieSecure   bool
	CSRFEnabled    bool
	AllowedOrigins []string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GenAITimeout  time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

var ErrInvalidConfig = errors.New("invalid config")

// Load reads .env (when present) and the process environment exactly once.
// Components receive the returned value and never read the environment themselves.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("notice: .env file not found: %v. using system environment variables", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	accessHours, err := EnvInt("ACCESS_TOKEN_EXPIRE_HOURS", 1)
	if err != nil {
		return nil, err
	}
	refreshDays, err := EnvInt("REFRESH_TOKEN_EXPIRE_DAYS", 7)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServiceName: EnvDefault("SERVICE_NAME", "blogpost"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SecretKey:      []byte(os.Getenv("SECRET_KEY")),
		Algorithm:      EnvDefault("ALGORITHM", "HS256"),
		AccessTTL:      time.Duration(accessHours) * time.Hour,
		RefreshTTL:     time.Duration(refreshDays) * 24 * time.Hour,
		CookieSecure:   EnvBoolDefault("COOKIE_SECURE", false),
		CSRFEnabled:    EnvBoolDefault("CSRF_ENABLED", false),
		AllowedOrigins: CSV(EnvDefault("CORS_ORIGINS", "http://localhost:5173")),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   EnvDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		GenAITimeout:  EnvDurationDefault("GENAI_TIMEOUT", 60*time.Second),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "blogs"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := NonEmpty(c.DatabaseURL, "DATABASE_URL"); err != nil {
		return err
	}
	if err := NonEmptyBytes(c.SecretKey, "SECRET_KEY"); err != nil {
		return err
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("%w: ACCESS_TOKEN_EXPIRE_HOURS must be positive", ErrInvalidConfig)
	}
	if c.RefreshTTL <= 0 {
		return fmt.Errorf("%w: REFRESH_TOKEN_EXPIRE_DAYS must be positive", ErrInvalidConfig)
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("%w: unsupported ALGORITHM %q", ErrInvalidConfig, c.Algorithm)
	}
	return nil
}
