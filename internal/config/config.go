package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	ChannelBase      string
	FeedCacheTTL     time.Duration
	SSEKeepAlive     time.Duration
	WriteRateLimit   int
	WriteRateWindow  time.Duration
	StreamRateLimit  int
	StreamRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WREN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Wren Social API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("channel.base", "wren")
	v.SetDefault("feed.cache_ttl", "45s")
	v.SetDefault("sse.keepalive", "30s")
	v.SetDefault("rate.write_limit", 30)
	v.SetDefault("rate.write_window", "1m")
	v.SetDefault("rate.stream_limit", 5)
	v.SetDefault("rate.stream_window", "1m")

	feedTTL, err := time.ParseDuration(v.GetString("feed.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid feed cache ttl: %w", err)
	}

	keepAlive, err := time.ParseDuration(v.GetString("sse.keepalive"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid sse keepalive: %w", err)
	}

	writeWindow, err := time.ParseDuration(v.GetString("rate.write_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid write rate window: %w", err)
	}

	streamWindow, err := time.ParseDuration(v.GetString("rate.stream_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid stream rate window: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		ChannelBase:      v.GetString("channel.base"),
		FeedCacheTTL:     feedTTL,
		SSEKeepAlive:     keepAlive,
		WriteRateLimit:   v.GetInt("rate.write_limit"),
		WriteRateWindow:  writeWindow,
		StreamRateLimit:  v.GetInt("rate.stream_limit"),
		StreamRateWindow: streamWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
