package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr         string
	SQLitePath       string
	RedisAddr        string
	KafkaBrokers     []string
	InventoryBaseURL string
	ServiceName      string
	TerminalID       string

	// inventory availability cache
	StockTTL time.Duration

	// scan classifier tuning (thresholds, not guarantees)
	ScanInterKeyGap     time.Duration
	ScanIdleTimeout     time.Duration
	ScanMinLength       int
	ScanMaxCharInterval time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", "127.0.0.1:8090"),
		SQLitePath:       getenv("SQLITE_PATH", "pos-terminal.db"),
		RedisAddr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
		KafkaBrokers:     splitCSV(getenv("KAFKA_BROKERS", "kafka:9092")),
		InventoryBaseURL: getenv("INVENTORY_BASE_URL", "http://localhost:8080"),
		ServiceName:      getenv("SERVICE_NAME", "pos-terminal"),
		TerminalID:       getenv("TERMINAL_ID", "till-1"),

		StockTTL: getdur("STOCK_TTL", 5*time.Minute),

		ScanInterKeyGap:     getdur("SCAN_INTER_KEY_GAP", 150*time.Millisecond),
		ScanIdleTimeout:     getdur("SCAN_IDLE_TIMEOUT", 800*time.Millisecond),
		ScanMinLength:       getint("SCAN_MIN_LENGTH", 8),
		ScanMaxCharInterval: getdur("SCAN_MAX_CHAR_INTERVAL", 80*time.Millisecond),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
