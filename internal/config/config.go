package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the ReelInsight server.
type Config struct {
	Server     ServerConfig
	Media      MediaConfig
	Transcribe TranscribeConfig
	AI         AIConfig
	Store      StoreConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	SQLite     SQLiteConfig
	API        APIConfig
}

type ServerConfig struct {
	Port         int
	Env          string
	LogLevel     slog.Level
	WriteTimeout time.Duration
}

type MediaConfig struct {
	TempDir           string
	TempMaxAge        time.Duration
	JanitorInterval   time.Duration
	DownloaderBin     string
	TranscoderBin     string
	DownloaderInstall string
	DownloadTimeout   time.Duration
	ExtractTimeout    time.Duration
}

type TranscribeConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Ollama           OllamaConfig
	VLLM             VLLMConfig
	OpenAI           OpenAIConfig
	Anthropic        AnthropicConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type StoreConfig struct {
	Backend   string
	ResultTTL time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

type RedisConfig struct {
	URL string
}

type SQLiteConfig struct {
	Path string
}

type APIConfig struct {
	// RateLimitPerMin caps submits per client per minute. Zero disables it.
	RateLimitPerMin int
	KeyHashes       []string
	// TrustProxyHeaders lets X-Forwarded-For and X-Real-IP replace the peer
	// address. Only enable it behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

var validProviders = map[string]bool{
	"ollama":    true,
	"vllm":      true,
	"openai":    true,
	"anthropic": true,
}

var validBackends = map[string]bool{
	"memory":   true,
	"redis":    true,
	"postgres": true,
	"sqlite":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	openAIKey := os.Getenv("OPENAI_API_KEY")
	openAIBase := strings.TrimRight(envString("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/")

	cfg := &Config{
		Server: ServerConfig{
			Port:         envInt("REEL_PORT", 8080),
			Env:          envString("REEL_ENV", "development"),
			LogLevel:     envLevel("LOG_LEVEL", slog.LevelInfo),
			WriteTimeout: envDuration("HTTP_WRITE_TIMEOUT", 5*time.Minute),
		},
		Media: MediaConfig{
			TempDir:           envString("TEMP_DIR", "temp"),
			TempMaxAge:        envDuration("TEMP_MAX_AGE", 10*time.Minute),
			JanitorInterval:   envDuration("JANITOR_INTERVAL", time.Minute),
			DownloaderBin:     envString("DOWNLOADER_BIN", "yt-dlp"),
			TranscoderBin:     envString("TRANSCODER_BIN", "ffmpeg"),
			DownloaderInstall: envString("DOWNLOADER_INSTALL_CMD", "pip3 install yt-dlp"),
			DownloadTimeout:   envDuration("DOWNLOAD_TIMEOUT", 60*time.Second),
			ExtractTimeout:    envDuration("EXTRACT_TIMEOUT", 30*time.Second),
		},
		Transcribe: TranscribeConfig{
			APIKey:   openAIKey,
			BaseURL:  openAIBase,
			Model:    envString("TRANSCRIBE_MODEL", "whisper-1"),
			Language: envString("TRANSCRIBE_LANGUAGE", "en"),
			Timeout:  envDuration("TRANSCRIBE_TIMEOUT", 120*time.Second),
		},
		AI: AIConfig{
			Provider:         envString("AI_PROVIDER", "openai"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000"),
				Model:   envString("VLLM_MODEL", ""),
			},
			OpenAI: OpenAIConfig{
				APIKey:  openAIKey,
				BaseURL: openAIBase,
				Model:   envString("OPENAI_MODEL", "gpt-3.5-turbo"),
			},
			Anthropic: AnthropicConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				BaseURL: strings.TrimRight(envString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"), "/"),
				Model:   envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
			},
		},
		Store: StoreConfig{
			Backend:   envString("STORE_BACKEND", "memory"),
			ResultTTL: envDuration("RESULT_TTL", 0),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsDir:   envString("MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		SQLite: SQLiteConfig{
			Path: envString("SQLITE_PATH", "reels.db"),
		},
		API: APIConfig{
			RateLimitPerMin:   envInt("RATE_LIMIT_PER_MIN", 0),
			KeyHashes:         envList("API_KEY_HASHES"),
			TrustProxyHeaders: envBool("TRUST_PROXY_HEADERS", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Transcribe.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for transcription")
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of ollama, vllm, openai, anthropic; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "anthropic" && c.AI.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
	}
	if c.AI.Provider == "vllm" && c.AI.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
	}

	if !validBackends[c.Store.Backend] {
		return fmt.Errorf("STORE_BACKEND must be one of memory, redis, postgres, sqlite; got %q", c.Store.Backend)
	}
	if c.Store.Backend == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required when STORE_BACKEND is redis")
	}
	if c.Store.Backend == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is postgres")
	}
	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}

	if c.Media.DownloadTimeout <= 0 || c.Media.ExtractTimeout <= 0 {
		return fmt.Errorf("DOWNLOAD_TIMEOUT and EXTRACT_TIMEOUT must be positive")
	}
	if c.Media.JanitorInterval <= 0 {
		return fmt.Errorf("JANITOR_INTERVAL must be positive, got %s", c.Media.JanitorInterval)
	}
	// The janitor must never sweep files a running job still needs.
	if jobBound := c.Media.DownloadTimeout + c.Media.ExtractTimeout + c.Transcribe.Timeout; c.Media.TempMaxAge <= jobBound {
		return fmt.Errorf("TEMP_MAX_AGE (%s) must exceed DOWNLOAD_TIMEOUT+EXTRACT_TIMEOUT+TRANSCRIBE_TIMEOUT (%s)", c.Media.TempMaxAge, jobBound)
	}
	if c.API.RateLimitPerMin < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must be zero or positive, got %d", c.API.RateLimitPerMin)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func envLevel(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return defaultVal
	}
	return lvl
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
