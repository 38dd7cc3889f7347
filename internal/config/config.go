package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the service reads at startup.
type Config struct {
	Server ServerConfig
	Chat   ChatConfig
}

// Load builds the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Chat: chat}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ChatConfig tunes the websocket transport around the chat core.
type ChatConfig struct {
	// AllowedOrigins restricts websocket upgrades. Empty or "*" allows any
	// origin.
	AllowedOrigins []string
	// SendBuffer is the per-connection outbound queue length. A full queue
	// means the peer is too slow and the envelope is dropped.
	SendBuffer int
	// MaxMessageSize caps a single inbound frame in bytes.
	MaxMessageSize int64
	// WriteTimeout bounds a single outbound write.
	WriteTimeout time.Duration
	// PongTimeout is how long a connection may stay silent before it is
	// considered dead. Pings go out at 90% of this interval.
	PongTimeout time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	cfg := ChatConfig{
		SendBuffer:     64,
		MaxMessageSize: 4096,
		WriteTimeout:   10 * time.Second,
		PongTimeout:    60 * time.Second,
	}

	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	var err error
	if cfg.SendBuffer, err = intEnv("CHAT_SEND_BUFFER", cfg.SendBuffer); err != nil {
		return ChatConfig{}, err
	}

	maxSize, err := intEnv("CHAT_MAX_MESSAGE_SIZE", int(cfg.MaxMessageSize))
	if err != nil {
		return ChatConfig{}, err
	}
	cfg.MaxMessageSize = int64(maxSize)

	if cfg.PongTimeout, err = secondsEnv("CHAT_PONG_TIMEOUT_SECONDS", cfg.PongTimeout); err != nil {
		return ChatConfig{}, err
	}
	if cfg.WriteTimeout, err = secondsEnv("CHAT_WRITE_TIMEOUT_SECONDS", cfg.WriteTimeout); err != nil {
		return ChatConfig{}, err
	}

	return cfg, nil
}

// PingInterval derives the keepalive cadence from the pong timeout so pings
// always land before the read deadline expires.
func (c ChatConfig) PingInterval() time.Duration {
	return c.PongTimeout * 9 / 10
}

// OriginAllowed reports whether a websocket upgrade from the given origin
// may proceed.
func (c ChatConfig) OriginAllowed(origin string) bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid %s value: %q", key, raw)
	}
	return value, nil
}

func secondsEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, err := intEnv(key, int(fallback/time.Second))
	if err != nil {
		return 0, err
	}
	return time.Duration(value) * time.Second, nil
}
