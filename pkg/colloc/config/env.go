package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ApplyEnv overrides settings from COLLOC_* environment variables. Variables
// from the given .env files (default ".env") are loaded first; a missing file
// is not an error and already-set variables win over the file.
func ApplyEnv(s *Settings, envFiles ...string) {
	_ = godotenv.Load(envFiles...)

	s.CorpusDir = getEnv("COLLOC_CORPUS_DIR", s.CorpusDir)
	s.OutDir = getEnv("COLLOC_OUT_DIR", s.OutDir)
	s.Keyword = getEnv("COLLOC_KEYWORD", s.Keyword)
	s.WindowSize = getEnvInt("COLLOC_WINDOW_SIZE", s.WindowSize)
	s.WindowPolicy = getEnv("COLLOC_WINDOW_POLICY", s.WindowPolicy)
	s.LogBase = getEnvFloat("COLLOC_LOG_BASE", s.LogBase)
	s.Workers = getEnvInt("COLLOC_WORKERS", s.Workers)
	s.MinFreq = int64(getEnvInt("COLLOC_MIN_FREQ", int(s.MinFreq)))
	s.Limit = getEnvInt("COLLOC_LIMIT", s.Limit)
	s.Format = getEnv("COLLOC_FORMAT", s.Format)
	s.Stoplist = getEnv("COLLOC_STOPLIST", s.Stoplist)
	s.Exclude = getEnv("COLLOC_EXCLUDE", s.Exclude)
	s.DB = getEnv("COLLOC_DB", s.DB)
	s.LogLevel = getEnv("COLLOC_LOG_LEVEL", s.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
