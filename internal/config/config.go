package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"rbformat/internal/record"
)

// MinLineLength is the shortest line length a tab can be set to.
const MinLineLength = 10

type Config struct {
	Language         record.Language
	MaxLineRUS       int
	MaxLineJAP       int
	MaxLineJobChange int
	DatabaseURL      string
	WorkerCount      int
	LogLevel         string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	lang, err := record.ParseLanguage(getEnv("RBF_LANGUAGE", string(record.LangRUS)))
	if err != nil {
		log.Warn().Err(err).Msg("Invalid RBF_LANGUAGE, using RUS")
		lang = record.LangRUS
	}

	return &Config{
		Language:         lang,
		MaxLineRUS:       ClampLineLength(getEnvInt("RBF_MAX_LINE_RUS", 39)),
		MaxLineJAP:       ClampLineLength(getEnvInt("RBF_MAX_LINE_JAP", 22)),
		MaxLineJobChange: ClampLineLength(getEnvInt("RBF_MAX_LINE_JOBCHANGE", 30)),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		WorkerCount:      getEnvInt("WORKER_COUNT", 4),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// ClampLineLength raises n to MinLineLength.
func ClampLineLength(n int) int {
	return max(n, MinLineLength)
}

// MaxLineLength returns the configured line length for kind. JobChange has
// its own length; every other tab uses the active language's.
func (c *Config) MaxLineLength(kind record.Kind) int {
	switch {
	case kind == record.KindJobChange:
		return c.MaxLineJobChange
	case c.Language == record.LangJAP:
		return c.MaxLineJAP
	default:
		return c.MaxLineRUS
	}
}

// Options builds the formatting options for one call on kind.
func (c *Config) Options(kind record.Kind) record.Options {
	return record.Options{Language: c.Language, MaxLineLength: c.MaxLineLength(kind)}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
