package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the hivemindd server.
type Config struct {
	ListenAddr string
	DataDir    string

	// Snapshotting
	SnapshotInterval time.Duration

	// Embedding backend
	EmbeddingModel   string // "provider:model", e.g. "openai:text-embedding-3-small"
	EmbeddingAPIKey  string

	// LLM extraction backend
	LLMProvider string
	LLMAPIKey   string
	LLMModel    string

	// Replication
	EnableReplication bool
	RTDBURL           string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Ambient knobs not named directly in spec.md's flag list
	BusQueueCapacity   int
	WSWriteTimeout     time.Duration
	GraphDepthCeiling  int
	RequestTimeout     time.Duration
}

// Load reads configuration from environment variables, falling back to the
// defaults below. cmd/hivemindd/main.go defines no command-line flags, so
// the environment is the only way to override a default.
func Load() Config {
	return Config{
		ListenAddr: getEnv("HIVEMIND_LISTEN_ADDR", "0.0.0.0:8100"),
		DataDir:    getEnv("HIVEMIND_DATA_DIR", "./data"),

		SnapshotInterval: time.Duration(getEnvInt("HIVEMIND_SNAPSHOT_INTERVAL", 60)) * time.Second,

		EmbeddingModel:  getEnv("HIVEMIND_EMBEDDING_MODEL", "openai:text-embedding-3-small"),
		EmbeddingAPIKey: getEnv("HIVEMIND_EMBEDDING_API_KEY", ""),

		LLMProvider: getEnv("HIVEMIND_LLM_PROVIDER", "anthropic"),
		LLMAPIKey:   getEnv("HIVEMIND_LLM_API_KEY", ""),
		LLMModel:    getEnv("HIVEMIND_LLM_MODEL", "claude-sonnet-4-20250514"),

		EnableReplication: getEnv("HIVEMIND_ENABLE_REPLICATION", "false") == "true",
		RTDBURL:           getEnv("HIVEMIND_RTDB_URL", "ws://127.0.0.1:3001"),

		LogFile:  getEnv("HIVEMIND_LOG_FILE", "/tmp/hivemindd.log"),
		LogLevel: parseLogLevel(getEnv("HIVEMIND_LOG_LEVEL", "INFO")),

		BusQueueCapacity:  getEnvInt("HIVEMIND_BUS_QUEUE_CAPACITY", 256),
		WSWriteTimeout:    time.Duration(getEnvInt("HIVEMIND_WS_WRITE_TIMEOUT_SECONDS", 5)) * time.Second,
		GraphDepthCeiling: getEnvInt("HIVEMIND_GRAPH_DEPTH_CEILING", 10),
		RequestTimeout:    time.Duration(getEnvInt("HIVEMIND_REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
