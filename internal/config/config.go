package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Cfg struct {
	App        App
	Database   Database
	Logger     Logger
	LLM        LLM
	Tokenizer  Tokenizer
	Digest     Digest
	Browser    Browser
	Migrations Migrations
}

type App struct {
	Mode string // cli | server
	Host string
	Port string
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Enabled сообщает, настроено ли подключение к БД.
func (d Database) Enabled() bool {
	return d.Host != ""
}

func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// URL возвращает строку подключения в формате, который ожидает golang-migrate.
func (d Database) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type Migrations struct {
	Path string
}

type Logger struct {
	Env   string
	Level string
}

type LLM struct {
	APIKey            string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	TokensPerHour     int
}

// Tokenizer описывает схему кодирования и потолок входных токенов модели.
type Tokenizer struct {
	Encoding       string
	MaxInputTokens int
}

type Digest struct {
	MinTokens int
	SavePath  string
	Integrate bool
}

type Browser struct {
	Engine          string
	Display         string
	Headless        bool
	NavigateTimeout time.Duration
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		App: App{
			Mode: env("APP_MODE", "cli"),
			Host: env("APP_HOST", "127.0.0.1"),
			Port: env("APP_PORT", "8090"),
		},
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
		},
		Logger: Logger{
			Env:   env("ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
		},
		LLM: LLM{
			APIKey:            env("LLAMA_API_TOKEN", "ollama"),
			Model:             env("LLAMA_MODEL", "gemma3:4b"),
			BaseURL:           env("LLAMA_BASE_URL", "http://localhost:11434/v1"),
			Timeout:           envSeconds("LLM_TIMEOUT", 360*time.Second),
			RequestsPerMinute: envInt("LLM_RPM", 60),
			TokensPerHour:     envInt("LLM_TPH", 2000000),
		},
		Tokenizer: Tokenizer{
			Encoding:       env("LLAMA_ENCODING", "cl100k_base"),
			MaxInputTokens: envInt("LLAMA_MAX_TOKENS", 100000),
		},
		Digest: Digest{
			MinTokens: envInt("SIMPLIFY_MIN_TOKENS", 1024),
			SavePath:  env("SAVE_PATH", "./output"),
			Integrate: envBoolDefault("DIGEST_INTEGRATE", true),
		},
		Browser: Browser{
			Engine:          strings.ToLower(env("PW_ENGINE", "chromium")),
			Display:         os.Getenv("DISPLAY"),
			Headless:        envBoolDefault("PW_HEADLESS", true),
			NavigateTimeout: envSeconds("PW_NAVIGATE_TIMEOUT", 60*time.Second),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Cfg) Validate() error {
	if c.Tokenizer.MaxInputTokens <= 0 {
		return fmt.Errorf("LLAMA_MAX_TOKENS должен быть положительным, получено %d", c.Tokenizer.MaxInputTokens)
	}
	if c.Digest.MinTokens <= 0 {
		return fmt.Errorf("SIMPLIFY_MIN_TOKENS должен быть положительным, получено %d", c.Digest.MinTokens)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT должен быть положительным")
	}
	switch c.Browser.Engine {
	case "chromium", "firefox":
	default:
		return fmt.Errorf("неизвестный движок браузера: %s", c.Browser.Engine)
	}
	switch c.App.Mode {
	case "cli", "server":
	default:
		return fmt.Errorf("неизвестный режим запуска: %s", c.App.Mode)
	}
	return nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

// envSeconds читает целое число секунд.
func envSeconds(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return defaultValue
}

func envBoolDefault(key string, defaultValue bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1" || v == "yes"
}
