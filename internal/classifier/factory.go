package classifier

import (
	"fmt"
	"strings"

	"question-exporter/internal/config"
	"question-exporter/internal/events"
)

// Factory creates classifier clients with consistent logic
type Factory struct {
	HuggingFaceAPIKey string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	YandexOAuthToken  string
	YandexFolderID    string
	Sink              events.Sink
}

func NewFactory(cfg *config.Config, sink events.Sink) *Factory {
	return &Factory{
		HuggingFaceAPIKey: cfg.HuggingFaceAPIKey,
		OpenAIAPIKey:      cfg.OpenAIAPIKey,
		OpenAIBaseURL:     cfg.OpenAIBaseURL,
		OpenAIModel:       cfg.OpenAIModel,
		YandexOAuthToken:  cfg.YandexOAuthToken,
		YandexFolderID:    cfg.YandexFolderID,
		Sink:              sink,
	}
}

func (f *Factory) CreateClient(provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case config.ProviderHuggingFace:
		if f.HuggingFaceAPIKey == "" {
			return nil, fmt.Errorf("huggingface api key is not set")
		}
		return NewHuggingFace(f.HuggingFaceAPIKey, f.Sink), nil
	case config.ProviderOpenAI:
		if f.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai api key is not set")
		}
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIBaseURL, f.OpenAIModel, f.Sink), nil
	case config.ProviderYandex:
		if f.YandexOAuthToken == "" || f.YandexFolderID == "" {
			return nil, fmt.Errorf("yandex oauth token or folder id is not set")
		}
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID, f.Sink)
	default:
		return nil, fmt.Errorf("unknown classifier provider: %s", provider)
	}
}
