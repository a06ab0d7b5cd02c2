package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	WebhookPath = "/moderator"
	// ConfigPathEnv names the optional YAML config file.
	ConfigPathEnv = "MODERATOR_CONFIG"
)

type Config struct {
	Environment string `yaml:"environment" env:"ENVIRONMENT"`
	ProjectRoot string `yaml:"project_root" env:"PROJECT_ROOT"`
	OutputDir   string `yaml:"output_dir" env:"OUTPUT_DIR"`

	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	Bot        BotConfig        `yaml:"bot"`
	Proxy      ProxyConfig      `yaml:"proxy"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Redis      RedisConfig      `yaml:"redis"`
	S3         S3Config         `yaml:"s3"`
	Complaints ComplaintsConfig `yaml:"complaints"`
	Audit      AuditConfig      `yaml:"audit"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" env:"HTTP_ADDR"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type BotConfig struct {
	Token        string `yaml:"token" env:"MODERATOR_BOT_TOKEN"`
	WebhookURL   string `yaml:"webhook_url" env:"MODERATOR_WEBHOOK_URL"`
	SessionLimit int    `yaml:"session_limit" env:"AIOHTTP_SESSION_LIMIT"`
}

type ProxyConfig struct {
	Disable string `yaml:"disable" env:"DISABLE_PROXY"`
	User    string `yaml:"user" env:"PROXY_USER"`
	Pass    string `yaml:"pass" env:"PROXY_PASS"`
	Host    string `yaml:"host" env:"PROXY_HOST"`
	Port    string `yaml:"port" env:"PROXY_PORT"`
	// URL and Auth are the legacy pair, used when the split settings are
	// incomplete.
	URL  string `yaml:"url" env:"PROXY_URL"`
	Auth string `yaml:"auth" env:"PROXY_AUTH"`
}

type PostgresConfig struct {
	DSN            string `yaml:"dsn" env:"DATABASE_URL"`
	Host           string `yaml:"host" env:"DB_HOST"`
	Port           int    `yaml:"port" env:"DB_PORT"`
	Name           string `yaml:"name" env:"DB_NAME"`
	User           string `yaml:"user" env:"DB_USER"`
	Password       string `yaml:"password" env:"DB_PASSWORD"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"DB_TIMEOUT"`
}

type RedisConfig struct {
	Addr           string `yaml:"addr" env:"REDIS_ADDR"`
	Password       string `yaml:"password" env:"REDIS_PASSWORD"`
	DB             int    `yaml:"db" env:"REDIS_DB"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds" env:"LOCK_TTL_SECONDS"`
}

type S3Config struct {
	Endpoint      string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey     string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket        string `yaml:"bucket" env:"S3_BUCKET"`
	Region        string `yaml:"region" env:"S3_REGION"`
	UseSSL        bool   `yaml:"use_ssl" env:"S3_USE_SSL"`
	URLTTLSeconds int    `yaml:"url_ttl_seconds" env:"S3_URL_TTL_SECONDS"`
}

type ComplaintsConfig struct {
	AllowRedecide bool `yaml:"allow_redecide" env:"COMPLAINT_ALLOW_REDECIDE"`
	PageSize      int  `yaml:"page_size" env:"COMPLAINTS_PAGE_SIZE"`
}

type AuditConfig struct {
	Enabled bool `yaml:"enabled" env:"AUDIT_ENABLED"`
}

func Default() Config {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}

	return Config{
		Environment: "DEV",
		ProjectRoot: root,
		OutputDir:   "output",
		HTTP:        HTTPConfig{Addr: ":8000"},
		Log:         LogConfig{Level: "info"},
		Bot:         BotConfig{SessionLimit: 100},
		Postgres: PostgresConfig{
			Host:           "localhost",
			Port:           6432,
			Name:           "refbot",
			User:           "postgres",
			TimeoutSeconds: 30,
		},
		Redis:      RedisConfig{LockTTLSeconds: 30},
		S3:         S3Config{Region: "us-east-1", URLTTLSeconds: 900},
		Complaints: ComplaintsConfig{PageSize: 5},
	}
}

// Load reads .env (from PROJECT_ROOT when set, otherwise the working
// directory), then layers the optional YAML file named by MODERATOR_CONFIG
// and finally the environment on top of Default.
func Load() (Config, error) {
	loadDotEnv()

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(ConfigPathEnv)); path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func loadDotEnv() {
	if root := strings.TrimSpace(os.Getenv("PROJECT_ROOT")); root != "" {
		if err := godotenv.Load(filepath.Join(root, ".env")); err == nil {
			return
		}
	}
	// a missing .env is fine: production sets variables directly
	_ = godotenv.Load()
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()

	c.Environment = strings.TrimSpace(c.Environment)
	if c.Environment == "" {
		c.Environment = defaults.Environment
	}
	if strings.TrimSpace(c.ProjectRoot) == "" {
		c.ProjectRoot = defaults.ProjectRoot
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = defaults.OutputDir
	}
	if c.Bot.SessionLimit <= 0 {
		c.Bot.SessionLimit = defaults.Bot.SessionLimit
	}
	if c.Postgres.TimeoutSeconds <= 0 {
		c.Postgres.TimeoutSeconds = defaults.Postgres.TimeoutSeconds
	}
	if c.Redis.LockTTLSeconds <= 0 {
		c.Redis.LockTTLSeconds = defaults.Redis.LockTTLSeconds
	}
	if strings.TrimSpace(c.S3.Region) == "" {
		c.S3.Region = defaults.S3.Region
	}
	if c.S3.URLTTLSeconds <= 0 {
		c.S3.URLTTLSeconds = defaults.S3.URLTTLSeconds
	}
	if c.Complaints.PageSize <= 0 {
		c.Complaints.PageSize = defaults.Complaints.PageSize
	}
	c.Bot.Token = strings.TrimSpace(c.Bot.Token)
	c.Bot.WebhookURL = strings.TrimRight(strings.TrimSpace(c.Bot.WebhookURL), "/")
}

// Validate checks what the webhook server cannot start without.
func (c Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("MODERATOR_BOT_TOKEN is required")
	}
	if c.Bot.WebhookURL == "" {
		return errors.New("MODERATOR_WEBHOOK_URL is required")
	}

	parsed, err := url.Parse(c.Bot.WebhookURL)
	if err != nil {
		return fmt.Errorf("parse MODERATOR_WEBHOOK_URL: %w", err)
	}
	if parsed.Scheme != "https" || parsed.Host == "" {
		return fmt.Errorf("MODERATOR_WEBHOOK_URL must be an https url, got %q", c.Bot.WebhookURL)
	}
	return nil
}

func (c Config) WebhookEndpoint() string {
	return c.Bot.WebhookURL + WebhookPath
}

func (c Config) DBConnectTimeout() time.Duration {
	return time.Duration(c.Postgres.TimeoutSeconds) * time.Second
}

func (c Config) LockTTL() time.Duration {
	return time.Duration(c.Redis.LockTTLSeconds) * time.Second
}

func (c Config) S3URLTTL() time.Duration {
	return time.Duration(c.S3.URLTTLSeconds) * time.Second
}

func (c Config) S3Enabled() bool {
	return strings.TrimSpace(c.S3.Endpoint) != "" && strings.TrimSpace(c.S3.Bucket) != ""
}

// DatabaseDSN returns DATABASE_URL when set, otherwise a URL built from the
// DB_* settings.
func (c Config) DatabaseDSN() string {
	if dsn := strings.TrimSpace(c.Postgres.DSN); dsn != "" {
		return dsn
	}

	dsn := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Postgres.Host, strconv.Itoa(c.Postgres.Port)),
		Path:   "/" + c.Postgres.Name,
	}
	if c.Postgres.Password != "" {
		dsn.User = url.UserPassword(c.Postgres.User, c.Postgres.Password)
	} else {
		dsn.User = url.User(c.Postgres.User)
	}
	query := url.Values{}
	query.Set("connect_timeout", strconv.Itoa(c.Postgres.TimeoutSeconds))
	dsn.RawQuery = query.Encode()
	return dsn.String()
}

// ProxyURL resolves the outbound proxy. DISABLE_PROXY wins, then the split
// PROXY_USER/PASS/HOST/PORT settings, then the legacy PROXY_URL+PROXY_AUTH
// pair. Empty means a direct connection.
func (c Config) ProxyURL() string {
	switch strings.ToLower(strings.TrimSpace(c.Proxy.Disable)) {
	case "true", "1", "yes", "on":
		return ""
	}

	p := c.Proxy
	if p.User != "" && p.Pass != "" && p.Host != "" && p.Port != "" {
		return fmt.Sprintf("http://%s:%s@%s:%s", p.User, p.Pass, p.Host, p.Port)
	}

	if p.URL == "" || p.Auth == "" {
		return ""
	}
	proxyURL := p.URL
	if !strings.Contains(proxyURL, "://") {
		proxyURL = "http://" + proxyURL
	}
	if username, password, ok := strings.Cut(p.Auth, ":"); ok {
		proxyURL = strings.Replace(proxyURL, "://", "://"+username+":"+password+"@", 1)
	}
	return proxyURL
}
