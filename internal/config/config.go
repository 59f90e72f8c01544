package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort  string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis     Redis     `yaml:"redis"`
	Session   Session   `yaml:"session"`
	Bot       Bot       `yaml:"bot"`
	WebSocket WebSocket `yaml:"websocket"`
}

type Redis struct {
	Enabled   bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host      string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port      string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DedupeTTL time.Duration `yaml:"dedupe-ttl" env:"REDIS_DEDUPE_TTL" env-default:"10m"`
}

type Session struct {
	TTL           time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	SweepInterval time.Duration `yaml:"sweep-interval" env:"SESSION_SWEEP_INTERVAL" env-default:"5m"`
}

type Bot struct {
	// Seed - 0 seeds the bot from the clock.
	Seed int64 `yaml:"seed" env:"BOT_SEED" env-default:"0"`
}

type WebSocket struct {
	ReadTimeout    time.Duration `yaml:"read-timeout" env:"WS_READ_TIMEOUT" env-default:"60s"`
	WriteTimeout   time.Duration `yaml:"write-timeout" env:"WS_WRITE_TIMEOUT" env-default:"10s"`
	PingInterval   time.Duration `yaml:"ping-interval" env:"WS_PING_INTERVAL" env-default:"30s"`
	MaxMessageSize int64         `yaml:"max-message-size" env:"WS_MAX_MESSAGE_SIZE" env-default:"4096"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
