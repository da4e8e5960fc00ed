package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	UIModeTUI      = "tui"
	UIModeHeadless = "headless"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

var (
	ErrUnknownUIMode   = errors.New("unknown ui mode")
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrUnknownLogLevel = errors.New("unknown log level")
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFile    string `yaml:"log-file" env:"LOG_FILE" env-default:"tictactoe.log"`
	UI         string `yaml:"ui" env:"UI_MODE" env-default:"tui"`
	Theme      string `yaml:"theme" env:"UI_THEME" env-default:"light"`
	HTTPHost   string `yaml:"http-host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Channel string `yaml:"channel" env:"REDIS_CHANNEL" env-default:"tictactoe:events"`
}

// MustLoad - load all configurations in config.yml file. Without the file only
// the environment and the defaults are used.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err = cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.UI {
	case UIModeTUI, UIModeHeadless:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownUIMode, that.UI)
	}

	switch that.Theme {
	case ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTheme, that.Theme)
	}

	switch that.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, that.LogLevel)
	}

	return nil
}

func (that *Config) GetHTTPAddr() string {
	return fmt.Sprintf("%s:%s", that.HTTPHost, that.HTTPPort)
}

func (that *Config) GetSocketAddr() string {
	return fmt.Sprintf("%s:%s", that.HTTPHost, that.SocketPort)
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
