package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/zhouzirui/marketplace/backend/internal/logging"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Events   EventsConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	database, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	events, err := loadEventsConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Database: database, Log: logCfg, Events: events}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	addr, err := ParseAddr(os.Getenv("PORT"))
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{Addr: addr}, nil
}

// ParseAddr turns a port ("8080") or a full address (":8080",
// "127.0.0.1:8080") into a listen address. Empty means :8080.
func ParseAddr(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	return ":" + port, nil
}

// DatabaseConfig 描述存储配置。
type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	// SeedOnStart runs the destructive reset-and-seed routine at startup.
	SeedOnStart bool
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	seed, err := parseBoolEnv("DB_SEED_ON_START", false)
	if err != nil {
		return DatabaseConfig{}, err
	}

	maxOpen, err := parseOptionalIntEnv("DB_MAX_OPEN_CONNS")
	if err != nil {
		return DatabaseConfig{}, err
	}
	maxOpenConns := 0
	if maxOpen != nil {
		if *maxOpen < 0 {
			return DatabaseConfig{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS value %d", *maxOpen)
		}
		maxOpenConns = *maxOpen
	}

	return DatabaseConfig{
		DSN:          getEnvOrDefault("DB_DSN", "marketplace.db"),
		MaxOpenConns: maxOpenConns,
		SeedOnStart:  seed,
	}, nil
}

// LogConfig 描述日志配置。
type LogConfig struct {
	Level  slog.Level
	Format logging.Format
}

func loadLogConfig() (LogConfig, error) {
	level, err := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	format, err := logging.ParseFormat(os.Getenv("LOG_FORMAT"))
	if err != nil {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT: %w", err)
	}
	return LogConfig{Level: level, Format: format}, nil
}

// EventsConfig 描述变更推送配置。
type EventsConfig struct {
	Buffer int
}

func loadEventsConfig() (EventsConfig, error) {
	buffer := 16
	if override, err := parseOptionalIntEnv("EVENTS_BUFFER"); err != nil {
		return EventsConfig{}, err
	} else if override != nil {
		if *override < 1 {
			buffer = 1
		} else {
			buffer = *override
		}
	}
	return EventsConfig{Buffer: buffer}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
