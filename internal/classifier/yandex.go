package classifier

import (
	"context"
	"fmt"

	"github.com/Morwran/yagpt"

	"question-exporter/internal/events"
)

// YandexClassifier runs the batch yes/no protocol over YandexGPT.
type YandexClassifier struct {
	ya       yagpt.YaGPTFace
	iamToken string
	sink     events.Sink
	brk      breaker
}

func NewYandex(oauthToken, folderID string, sink events.Sink) (*YandexClassifier, error) {
	// Create IAM token from OAuth token
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	resp, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create iam token: %w", err)
	}

	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}

	return &YandexClassifier{
		ya:       ya,
		iamToken: resp.IamToken,
		sink:     sink,
	}, nil
}

func (c *YandexClassifier) ClassifyBatch(ctx context.Context, texts []string) []bool {
	if len(texts) == 0 {
		return nil
	}
	if c.brk.open() {
		return allFalse(len(texts))
	}

	messages := []yagpt.Message{
		{Role: "system", Content: classifySystemPrompt},
		{Role: "user", Content: buildClassifyPrompt(texts)},
	}

	resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, messages)
	if err != nil {
		events.Errorf(c.sink, "classifier", "yagpt completion failed: %v", err)
		c.brk.failure()
		return allFalse(len(texts))
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		events.Warnf(c.sink, "classifier", "yagpt returned empty response")
		c.brk.failure()
		return allFalse(len(texts))
	}

	c.brk.success()
	return parseClassifyAnswers(resp.Alternatives[0].Message.Content, len(texts))
}
