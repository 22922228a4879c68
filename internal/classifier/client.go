package classifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Client classifies a batch of texts, reporting per item whether it
// reads as a question. Implementations never fail the batch: on any
// remote fault the affected items degrade to false, so callers always
// get a result slice of the same length and order as the input.
type Client interface {
	ClassifyBatch(ctx context.Context, texts []string) []bool
}

// maxConsecutiveFailures is how many failed calls in a row a provider
// tolerates before it stops hitting the network for the rest of the run.
const maxConsecutiveFailures = 5

// breaker tracks consecutive remote failures. Auth rejections trip it
// permanently for the process; a successful call resets the counter.
type breaker struct {
	mu       sync.Mutex
	tripped  bool
	failures int
}

func (b *breaker) open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripped || b.failures >= maxConsecutiveFailures
}

func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

func (b *breaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
}

func (b *breaker) trip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tripped = true
}

func allFalse(n int) []bool {
	return make([]bool, n)
}

// classifySystemPrompt drives the chat-completion providers. The
// numbered yes/no protocol keeps one round-trip per batch and makes the
// answer trivially parseable.
const classifySystemPrompt = `You are a strict text classifier. For each numbered message decide whether it reads as a question. Reply with exactly one line per message in the form "<number>. yes" or "<number>. no", nothing else.`

func buildClassifyPrompt(texts []string) string {
	var sb strings.Builder
	for i, t := range texts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.ReplaceAll(t, "\n", " "))
	}
	return sb.String()
}

func parseClassifyAnswers(content string, n int) []bool {
	out := make([]bool, n)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		numPart, rest, ok := strings.Cut(line, ".")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(numPart))
		if err != nil || idx < 1 || idx > n {
			continue
		}
		out[idx-1] = strings.EqualFold(strings.TrimSpace(rest), "yes")
	}
	return out
}
