package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalid         = errors.New("invalid configuration")
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	// Server
	ServerPort int    `envconfig:"SERVER_PORT" default:"8000"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	// Corpora
	CourseDataPath    string `envconfig:"COURSE_DATA_PATH" default:"CourseContentData.jsonl"`
	DiscourseDataPath string `envconfig:"DISCOURSE_DATA_PATH" default:"DicourseData.jsonl"`

	// Backends
	LLMProvider           string `envconfig:"LLM_PROVIDER" default:"openai"`
	OpenAIAPIKey          string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL         string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	GeminiAPIKey          string `envconfig:"GEMINI_API_KEY"`
	BackendTimeoutSeconds int    `envconfig:"BACKEND_TIMEOUT_SECONDS" default:"60"`

	// Embeddings
	EmbeddingModel      string  `envconfig:"EMBEDDING_MODEL"`
	EmbeddingDimensions int     `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	EmbeddingBatchSize  int     `envconfig:"EMBEDDING_BATCH_SIZE" default:"100"`
	EmbeddingRateLimit  float64 `envconfig:"EMBEDDING_RATE_LIMIT" default:"0"` // requests per second, 0 disables pacing

	// Answering
	ChatModel           string  `envconfig:"CHAT_MODEL"`
	VisionModel         string  `envconfig:"VISION_MODEL"`
	MaxTokens           int     `envconfig:"MAX_TOKENS" default:"500"`
	Temperature         float32 `envconfig:"TEMPERATURE" default:"0.7"`
	TopK                int     `envconfig:"TOP_K" default:"5"`
	SimilarityThreshold float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.7"`
	MaxLinks            int     `envconfig:"MAX_LINKS" default:"3"`

	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Optional integrations
	HistoryDatabaseURL string `envconfig:"HISTORY_DATABASE_URL"`
	MigrationPath      string `envconfig:"MIGRATION_PATH" default:"file://migrations"`
	NSQDHost           string `envconfig:"NSQD_HOST"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Missing .env files are fine, the shell may provide everything.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.applyProviderDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyProviderDefaults() {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.EmbeddingModel == "" {
			c.EmbeddingModel = "text-embedding-004"
		}
		if c.ChatModel == "" {
			c.ChatModel = "gemini-1.5-flash"
		}
		if c.VisionModel == "" {
			c.VisionModel = c.ChatModel
		}
	default:
		if c.EmbeddingModel == "" {
			c.EmbeddingModel = "text-embedding-3-small"
		}
		if c.ChatModel == "" {
			c.ChatModel = "gpt-3.5-turbo"
		}
		if c.VisionModel == "" {
			c.VisionModel = "gpt-4o-mini"
		}
	}
}

func (c *Config) Validate() error {
	if c.LLMProvider != ProviderOpenAI && c.LLMProvider != ProviderGemini {
		return fmt.Errorf("%w: LLM_PROVIDER %q", ErrInvalid, c.LLMProvider)
	}
	if c.LLMProvider == ProviderOpenAI && c.OpenAIBaseURL == "" {
		return fmt.Errorf("%w: OPENAI_BASE_URL", ErrMissingRequired)
	}
	if c.CourseDataPath == "" {
		return fmt.Errorf("%w: COURSE_DATA_PATH", ErrMissingRequired)
	}
	if c.DiscourseDataPath == "" {
		return fmt.Errorf("%w: DISCOURSE_DATA_PATH", ErrMissingRequired)
	}
	if c.EmbeddingBatchSize <= 0 {
		return fmt.Errorf("%w: EMBEDDING_BATCH_SIZE must be positive", ErrInvalid)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("%w: EMBEDDING_DIMENSIONS must be positive", ErrInvalid)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: TOP_K must be positive", ErrInvalid)
	}
	if c.MaxLinks < 0 {
		return fmt.Errorf("%w: MAX_LINKS must not be negative", ErrInvalid)
	}
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: SIMILARITY_THRESHOLD must be within [-1, 1]", ErrInvalid)
	}
	return nil
}

// APIKey returns the credential for the selected provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

func (c *Config) BootstrapRetryDelay() time.Duration {
	return time.Duration(c.BootstrapRetryDelaySeconds) * time.Second
}
