package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultUserAgent mimics a desktop Chrome browser. Upstream rejects fewer
// requests that look like an ordinary browser session.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type Config struct {
	Port         string        `env:"PORT" envDefault:"3000"`
	HTTPAddr     string        `env:"HTTP_ADDR"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15m"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Acquisition request profile
	UserAgent          string `env:"YT_UA" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"`
	Cookie             string `env:"YT_COOKIE"`
	CookieFile         string `env:"YT_COOKIE_FILE"`
	AcceptLanguage     string `env:"YT_ACCEPT_LANGUAGE" envDefault:"en-US,en;q=0.9,ko;q=0.8"`
	Referer            string `env:"YT_REFERER" envDefault:"https://www.youtube.com/"`
	DownloadBufferSize int    `env:"DOWNLOAD_BUFFER_SIZE" envDefault:"33554432"`

	// ScratchDir holds per-request audio files. Empty means os.TempDir().
	ScratchDir string `env:"SCRATCH_DIR"`

	TranscribeProvider string        `env:"TRANSCRIBE_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string        `env:"OPENAI_BASE_URL"`
	WhisperURL         string        `env:"WHISPER_URL"`
	WhisperModel       string        `env:"WHISPER_MODEL" envDefault:"whisper-1"`
	WhisperLanguage    string        `env:"WHISPER_LANGUAGE"`
	WhisperTimeout     time.Duration `env:"WHISPER_TIMEOUT" envDefault:"10m"`
}

// Addr returns the listen address. HTTP_ADDR wins over PORT.
func (c *Config) Addr() string {
	if c.HTTPAddr != "" {
		return c.HTTPAddr
	}
	return ":" + c.Port
}

// ScratchDirectory returns the configured scratch directory or the OS temp dir.
func (c *Config) ScratchDirectory() string {
	if c.ScratchDir != "" {
		return c.ScratchDir
	}
	return os.TempDir()
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.TranscribeProvider {
	case "openai":
	case "whisper":
		if c.WhisperURL == "" {
			return fmt.Errorf("TRANSCRIBE_PROVIDER=whisper requires WHISPER_URL")
		}
	default:
		return fmt.Errorf("unknown TRANSCRIBE_PROVIDER %q (want openai or whisper)", c.TranscribeProvider)
	}
	if c.DownloadBufferSize <= 0 {
		return fmt.Errorf("DOWNLOAD_BUFFER_SIZE must be positive, got %d", c.DownloadBufferSize)
	}
	return nil
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile  string
	HTTPAddr string
	LogLevel string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}

	cfg.TranscribeProvider = strings.ToLower(strings.TrimSpace(cfg.TranscribeProvider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
