package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ESPNAPI     ESPNAPI
	Rotation    Rotation
	Server      Server
	TelegramBot TelegramBot
}

type ESPNAPI struct {
	BaseURL           string        `envconfig:"ESPN_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/basketball/nba"`
	RelayPrefix       string        `envconfig:"ESPN_RELAY_PREFIX" default:"https://corsproxy.io/?"`
	Timeout           time.Duration `envconfig:"ESPN_TIMEOUT" default:"10s"`
	RequestsPerSecond float64       `envconfig:"ESPN_RPS" default:"2"`
	Burst             int           `envconfig:"ESPN_BURST" default:"4"`
}

type Rotation struct {
	Interval       time.Duration `envconfig:"ROTATION_INTERVAL" default:"15s"`
	ReloadSchedule string        `envconfig:"RELOAD_SCHEDULE" default:"0 2 * * *"`
}

type Server struct {
	Addr           string   `envconfig:"HTTP_ADDR" default:":8080"`
	AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// TelegramBot is optional; the bot is not started when Token is empty.
type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

func (t TelegramBot) Enabled() bool {
	return t.Token != ""
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
