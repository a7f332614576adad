package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	Port           string        `validate:"required,number"`
	Env            string        `validate:"oneof=development production"`
	TokenKind      string        `validate:"oneof=paseto jwt"`
	TokenSecret    string        `validate:"required,len=32"`
	TokenDuration  time.Duration `validate:"gt=0"`
	AllowedOrigins []string      `validate:"min=1,dive,required"`
	ReadLimit      int64         `validate:"min=512"`
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}

// LoadConfig reads .env (when present) and the environment. InitValidator
// must have been called.
func LoadConfig() (*Config, error) {
	godotenv.Load()

	duration, err := time.ParseDuration(getenv("TOKEN_DURATION", "24h"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_DURATION: %w", err)
	}

	readLimit, err := strconv.ParseInt(getenv("READ_LIMIT", "4096"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("READ_LIMIT: %w", err)
	}

	config := &Config{
		Port:           getenv("PORT", "8080"),
		Env:            getenv("ENV", EnvProduction),
		TokenKind:      getenv("TOKEN_KIND", "paseto"),
		TokenSecret:    os.Getenv("TOKEN_SECRET"),
		TokenDuration:  duration,
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "*")),
		ReadLimit:      readLimit,
	}

	if err := Validate.Struct(config); err != nil {
		return nil, err
	}

	return config, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	return lo.FilterMap(strings.Split(s, ","), func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}
