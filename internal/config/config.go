package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Auth       AuthConfig       `yaml:"auth"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Branding   BrandingConfig   `yaml:"branding"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit ServerRateLimit `yaml:"rate_limit"`
}

type ServerRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// UpstreamConfig points at the remote order service. The base URL is injected
// here instead of being hardcoded at each call site.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig carries the shared manager password. The password is compared
// and stored in cleartext; the gate is a deterrent for the staff dashboard,
// not a security boundary, since the remote service performs no corresponding
// authorization check.
type AuthConfig struct {
	ManagerPassword string        `yaml:"manager_password"`
	CookieName      string        `yaml:"cookie_name"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// BrandingConfig is printed on receipts and page headers.
type BrandingConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
	Footer  string `yaml:"footer"`
}

type GoogleConfig struct {
	CredentialsFile     string `yaml:"credentials_file"`
	OrdersSpreadsheetID string `yaml:"orders_spreadsheet_id"`
}

type TelegramConfig struct {
	BotToken       string `yaml:"bot_token"`
	ManagersChatID int64  `yaml:"managers_chat_id"`
}

func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Auth.ManagerPassword == "" || c.Auth.ManagerPassword == "CHANGE_ME" {
		return errors.New("manager password is required")
	}

	if c.Upstream.BaseURL == "" {
		return errors.New("upstream base URL is required")
	}
	if _, err := url.ParseRequestURI(c.Upstream.BaseURL); err != nil {
		return fmt.Errorf("invalid upstream base URL: %w", err)
	}

	if c.Google.CredentialsFile != "" && c.Google.OrdersSpreadsheetID == "" {
		return errors.New("google.orders_spreadsheet_id is required when credentials are set")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "kahwadash"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = 15 * time.Second
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "manager_session"
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 24 * time.Hour
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Branding.Name == "" {
		c.Branding.Name = "Kahwa & Kabab"
	}
	if c.Branding.Footer == "" {
		c.Branding.Footer = "Thank you for your order!"
	}
}
