package classifier

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"question-exporter/internal/events"
)

// OpenAIClassifier uses a chat completion as a zero-shot oracle. One
// completion serves the whole batch via the numbered yes/no protocol.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
	sink   events.Sink
	brk    breaker
}

func NewOpenAI(apiKey, baseURL, model string, sink events.Sink) *OpenAIClassifier {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(config),
		model:  model,
		sink:   sink,
	}
}

func (c *OpenAIClassifier) ClassifyBatch(ctx context.Context, texts []string) []bool {
	if len(texts) == 0 {
		return nil
	}
	if c.brk.open() {
		return allFalse(len(texts))
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildClassifyPrompt(texts)},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden) {
			events.Errorf(c.sink, "classifier", "openai auth error %d, disabling remote classification", apiErr.HTTPStatusCode)
			c.brk.trip()
			return allFalse(len(texts))
		}
		events.Errorf(c.sink, "classifier", "chat completion failed: %v", err)
		c.brk.failure()
		return allFalse(len(texts))
	}

	c.brk.success()
	if len(resp.Choices) == 0 {
		return allFalse(len(texts))
	}
	return parseClassifyAnswers(resp.Choices[0].Message.Content, len(texts))
}
