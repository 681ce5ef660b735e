package config

import (
	"os"
	"strconv"
	"time"

	applog "chatstore/internal/log"
)

type Config struct {
	Port           string
	DBDSN          string
	LogFile        string
	AgentAPIKey    string
	AgentCacheSize int
	AgentCacheTTL  time.Duration
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "chatstore.db" // sqlite file in project root
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./chatstore.log"
	}

	cacheSize := 128
	if v := os.Getenv("AGENT_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cacheSize = n
		}
	}
	cacheTTL := 30 * time.Minute
	if v := os.Getenv("AGENT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cacheTTL = d
		}
	}

	cfg := Config{
		Port:           port,
		DBDSN:          dsn,
		LogFile:        logFile,
		AgentAPIKey:    os.Getenv("AGENT_API_KEY"),
		AgentCacheSize: cacheSize,
		AgentCacheTTL:  cacheTTL,
	}
	applog.Startup("config", map[string]any{
		"port": cfg.Port, "db_dsn": cfg.DBDSN, "log_file": cfg.LogFile,
		"agent_cache_size": cfg.AgentCacheSize, "agent_cache_ttl": cfg.AgentCacheTTL.String(),
	})
	return cfg
}
