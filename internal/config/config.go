package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderYandex      = "yandex"
)

type Config struct {
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	ChannelIDs       []int64 `env:"CHANNEL_IDS" envSeparator:":"`

	// Detection settings
	Language           string   `env:"EXPORT_LANGUAGE" envDefault:"sv"`
	ExtraKeywords      []string `env:"EXTRA_KEYWORDS" envSeparator:":"`
	UseRemoteDetection bool     `env:"USE_REMOTE_DETECTION" envDefault:"false"`

	// Remote classifier settings
	ClassifierProvider string `env:"CLASSIFIER_PROVIDER" envDefault:"huggingface"`
	HuggingFaceAPIKey  string `env:"HUGGINGFACE_API_KEY"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL"`
	OpenAIModel        string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken   string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID     string `env:"YANDEX_FOLDER_ID"`

	// Collection settings
	Concurrency  int    `env:"SCAN_CONCURRENCY" envDefault:"3"`
	BatchSize    int    `env:"SCAN_BATCH_SIZE" envDefault:"32"`
	ScanSchedule string `env:"SCAN_SCHEDULE"`

	// Storage
	ArchiveDBPath      string `env:"ARCHIVE_DB_PATH" envDefault:"data/messages.db"`
	CheckpointFilePath string `env:"CHECKPOINT_FILE_PATH" envDefault:"data/checkpoints.json"`
	RegistryFilePath   string `env:"REGISTRY_FILE_PATH" envDefault:"data/dedupe_registry.json"`
	ExportFilePath     string `env:"EXPORT_FILE_PATH" envDefault:"data/export.txt"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
