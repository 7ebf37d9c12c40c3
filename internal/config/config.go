package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kapu/lingo-digest-bot/internal/constants"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

type Config struct {
	Duolingo  DuolingoConfig
	Generator GeneratorConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Polly     PollyConfig
	Messenger MessengerConfig
	Telegram  TelegramConfig
	Iris      IrisConfig
	Digest    DigestConfig
	Logging   LoggingConfig
}

type DuolingoConfig struct {
	BaseURL  string
	TTSURL   string
	Username string
	Password string
	Token    string
}

type GeneratorConfig struct {
	Enabled           bool
	Backend           string
	TranslateLanguage string
	StoryMaxWords     int
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type PollyConfig struct {
	Enabled bool
	Region  string
	Engine  string
}

type MessengerConfig struct {
	Kind   string
	ChatID string
}

type TelegramConfig struct {
	Token   string
	BaseURL string
}

type IrisConfig struct {
	BaseURL string
}

type DigestConfig struct {
	WordCount        int
	ScratchDir       string
	AudioConcurrency int
	Timezone         string
}

type LoggingConfig struct {
	Level string
	File  string
}

// HasDestination reports whether delivery has somewhere to go.
func (c *Config) HasDestination() bool {
	if strings.TrimSpace(c.Messenger.ChatID) == "" {
		return false
	}
	if c.Messenger.Kind == "telegram" && c.Telegram.Token == "" {
		return false
	}
	return true
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Duolingo: DuolingoConfig{
			BaseURL:  getEnv("DUOLINGO_BASE_URL", constants.APIConfig.DuolingoBaseURL),
			TTSURL:   getEnv("DUOLINGO_TTS_URL", constants.APIConfig.DuolingoTTSURL),
			Username: getEnv("DUOLINGO_USERNAME", ""),
			Password: getEnv("DUOLINGO_PASSWORD", ""),
			Token:    getEnv("DUOLINGO_JWT", ""),
		},
		Generator: GeneratorConfig{
			Enabled:           getEnvBool("CONTENT_ENABLED", true),
			Backend:           strings.ToLower(getEnv("GENERATOR_BACKEND", "")),
			TranslateLanguage: getEnv("TRANSLATE_LANGUAGE", constants.GeneratorConfig.TranslateLanguage),
			StoryMaxWords:     getEnvInt("STORY_MAX_WORDS", constants.GeneratorConfig.StoryMaxWords),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", constants.GeneratorConfig.DefaultOpenAIModel),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", constants.GeneratorConfig.DefaultGeminiModel),
		},
		Polly: PollyConfig{
			Enabled: getEnvBool("NARRATION_ENABLED", true),
			Region:  getEnv("POLLY_REGION", getEnv("AWS_REGION", "us-east-1")),
			Engine:  getEnv("POLLY_ENGINE", "neural"),
		},
		Messenger: MessengerConfig{
			Kind:   strings.ToLower(getEnv("MESSENGER", "telegram")),
			ChatID: getEnv("CHAT_ID", ""),
		},
		Telegram: TelegramConfig{
			Token:   getEnv("TELEGRAM_TOKEN", ""),
			BaseURL: getEnv("TELEGRAM_BASE_URL", constants.APIConfig.TelegramBaseURL),
		},
		Iris: IrisConfig{
			BaseURL: getEnv("IRIS_BASE_URL", constants.APIConfig.IrisBaseURL),
		},
		Digest: DigestConfig{
			WordCount:        getEnvInt("WORD_COUNT", constants.DefaultWordCount),
			ScratchDir:       getEnv("SCRATCH_DIR", "scratch"),
			AudioConcurrency: getEnvInt("WORD_AUDIO_CONCURRENCY", constants.DownloadConfig.Concurrency),
			Timezone:         getEnv("DIGEST_TIMEZONE", "Asia/Shanghai"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	return cfg, nil
}

// Validate checks the settings a run cannot start without. It performs no I/O.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Duolingo.Username) == "" {
		return errors.NewConfigurationError("duolingo username is required", "DUOLINGO_USERNAME")
	}
	if c.Duolingo.Password == "" && c.Duolingo.Token == "" {
		return errors.NewConfigurationError("either a duolingo password or a JWT is required", "DUOLINGO_PASSWORD")
	}
	if c.Digest.WordCount <= 0 {
		return errors.NewConfigurationError(fmt.Sprintf("word count must be positive, got %d", c.Digest.WordCount), "WORD_COUNT")
	}
	if c.Digest.ScratchDir == "" {
		return errors.NewConfigurationError("scratch directory is required", "SCRATCH_DIR")
	}
	switch c.Messenger.Kind {
	case "telegram", "iris":
	default:
		return errors.NewConfigurationError(fmt.Sprintf("unknown messenger %q", c.Messenger.Kind), "MESSENGER")
	}
	switch c.Generator.Backend {
	case "", "openai", "gemini":
	default:
		return errors.NewConfigurationError(fmt.Sprintf("unknown generator backend %q", c.Generator.Backend), "GENERATOR_BACKEND")
	}
	return nil
}

// ParseWordCount parses the word count argument, falling back to
// DefaultWordCount when it is not a positive integer.
func ParseWordCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return constants.DefaultWordCount, err
	}
	if n <= 0 {
		return constants.DefaultWordCount, fmt.Errorf("word count must be positive, got %d", n)
	}
	return n, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
