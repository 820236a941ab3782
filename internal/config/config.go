package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BrokerRedis = "redis"
	BrokerNats  = "nats"
)

type Config struct {
	LogLevel   string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Broker     string        `yaml:"broker" env:"BROKER" env-default:"redis"`
	BotDelay   time.Duration `yaml:"bot-delay" env:"BOT_DELAY" env-default:"1500ms"`
	InMemory   bool          `yaml:"in-memory" env:"IN_MEMORY" env-default:"false"`
	Redis      Redis         `yaml:"redis"`
	Nats       Nats          `yaml:"nats"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Nats struct {
	URL string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads path and lets environment variables override it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	if that.Broker != BrokerRedis && that.Broker != BrokerNats {
		return fmt.Errorf("unknown broker %q, want %s or %s", that.Broker, BrokerRedis, BrokerNats)
	}

	if that.BotDelay <= 0 {
		return fmt.Errorf("bot delay must be positive, got %s", that.BotDelay)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
