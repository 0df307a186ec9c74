package configs

import (
	"fmt"
	"time"

	"github.com/dkozyar/parlor/internal/infrastructure/env"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Relay       RelayConfig       `koanf:"relay"`
	History     HistoryConfig     `koanf:"history"`
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int           `koanf:"requestsPerTimeFrame"`
	TimeFrame            time.Duration `koanf:"timeFrame"`
}

type RelayConfig struct {
	SendBuffer     int   `koanf:"send_buffer"`
	MaxMessageSize int64 `koanf:"max_message_size"`
}

type HistoryConfig struct {
	Capacity uint `koanf:"capacity"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})

	setDefault(k, "rateLimiter.requestsPerTimeFrame", 20)
	setDefault(k, "rateLimiter.timeFrame", 5*time.Second)

	// Send buffer must absorb a burst of candidate envelopes without
	// stalling the relay; 64KB covers the largest SDP blobs seen in the wild.
	setDefault(k, "relay.send_buffer", 256)
	setDefault(k, "relay.max_message_size", 64*1024)

	setDefault(k, "history.capacity", 100)
}

func applyEnvOverrides(k *koanf.Koanf) {
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	if requests := env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 0); requests > 0 {
		k.Set("rateLimiter.requestsPerTimeFrame", requests)
	}
	if frame := env.GetDuration("RATE_LIMIT_TIME_FRAME", 0); frame > 0 {
		k.Set("rateLimiter.timeFrame", frame)
	}

	if buffer := env.GetInt("RELAY_SEND_BUFFER", 0); buffer > 0 {
		k.Set("relay.send_buffer", buffer)
	}
	if size := env.GetInt("RELAY_MAX_MESSAGE_SIZE", 0); size > 0 {
		k.Set("relay.max_message_size", size)
	}

	if capacity := env.GetInt("HISTORY_CAPACITY", 0); capacity > 0 {
		k.Set("history.capacity", uint(capacity))
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
