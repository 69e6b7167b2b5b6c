package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string     `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string     `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string     `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis      `yaml:"redis"`
	Chat       Chat       `yaml:"chat"`
	Game       Game       `yaml:"game"`
	Transports Transports `yaml:"transports"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Chat configures the redis backed chat transport.
type Chat struct {
	InboxKey     string        `yaml:"inbox-key" env:"CHAT_INBOX_KEY" env-default:"tictactoe:inbox"`
	OutboxPrefix string        `yaml:"outbox-prefix" env:"CHAT_OUTBOX_PREFIX" env-default:"tictactoe:outbox:"`
	PollTimeout  time.Duration `yaml:"poll-timeout" env:"CHAT_POLL_TIMEOUT" env-default:"30s"`
	BatchSize    int           `yaml:"batch-size" env:"CHAT_BATCH_SIZE" env-default:"100"`
}

type Game struct {
	DefaultSize int    `yaml:"default-size" env:"GAME_DEFAULT_SIZE" env-default:"3"`
	MaxSize     int    `yaml:"max-size" env:"GAME_MAX_SIZE" env-default:"9"`
	Glyphs      Glyphs `yaml:"glyphs"`
}

type Glyphs struct {
	Empty string `yaml:"empty" env-default:"⚪️"`
	A     string `yaml:"a" env-default:"🔴"`
	B     string `yaml:"b" env-default:"🔵"`
}

// Transports switches the inbound transports. A transport missing from the file is off.
type Transports struct {
	Redis     bool `yaml:"redis" env:"TRANSPORT_REDIS"`
	WebSocket bool `yaml:"websocket" env:"TRANSPORT_WEBSOCKET"`
	MCP       bool `yaml:"mcp" env:"TRANSPORT_MCP"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads path and applies environment overrides, then validates the game section
// and, when the redis transport is on, the redis address.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Game.validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	if config.Transports.Redis {
		if err := config.Redis.validate(); err != nil {
			return nil, fmt.Errorf("invalid redis config: %w", err)
		}
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Redis) validate() error {
	if that.Host == "" || that.Port == "" {
		return fmt.Errorf("host and port are required, got %q", that.GetRedisAddr())
	}

	return nil
}

func (that *Game) validate() error {
	if that.MaxSize < 1 {
		return fmt.Errorf("max-size must be positive, got %d", that.MaxSize)
	}

	if that.DefaultSize < 1 || that.DefaultSize > that.MaxSize {
		return fmt.Errorf("default-size must be between 1 and %d, got %d", that.MaxSize, that.DefaultSize)
	}

	return nil
}
