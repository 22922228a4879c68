package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"question-exporter/internal/events"
)

const hfInferenceURL = "https://router.huggingface.co/hf-inference/models/facebook/bart-large-mnli"

const (
	labelQuestion  = "question"
	labelStatement = "statement"
)

// HuggingFaceClient runs zero-shot classification against the
// Hugging Face inference API. One request carries the whole batch.
type HuggingFaceClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	sink       events.Sink
	sleep      func(time.Duration)
	brk        breaker

	// callMu keeps at most one inference request in flight per client,
	// which bounds remote pressure under concurrent channel tasks.
	callMu sync.Mutex
}

func NewHuggingFace(apiKey string, sink events.Sink) *HuggingFaceClient {
	return &HuggingFaceClient{
		apiKey:     apiKey,
		baseURL:    hfInferenceURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		sink:       sink,
		sleep:      time.Sleep,
	}
}

type zeroShotRequest struct {
	Inputs     []string           `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type zeroShotResult struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type callOutcome int

const (
	outcomeOK callOutcome = iota
	outcomeAuth
	outcomeTransient
	outcomeFatal
)

func (c *HuggingFaceClient) ClassifyBatch(ctx context.Context, texts []string) []bool {
	if len(texts) == 0 {
		return nil
	}
	if c.brk.open() {
		return allFalse(len(texts))
	}
	c.callMu.Lock()
	defer c.callMu.Unlock()

	const attempts = 3
loop:
	for attempt := 0; attempt < attempts; attempt++ {
		results, outcome := c.classifyOnce(ctx, texts)
		switch outcome {
		case outcomeOK:
			c.brk.success()
			return results
		case outcomeAuth:
			// Configuration fault, not transient: stop calling the
			// network for the rest of the process.
			c.brk.trip()
			return allFalse(len(texts))
		case outcomeTransient:
			if attempt < attempts-1 {
				c.sleep(time.Duration(1<<(attempt+1)) * time.Second)
			}
		case outcomeFatal:
			break loop
		}
	}
	c.brk.failure()
	return allFalse(len(texts))
}

func (c *HuggingFaceClient) classifyOnce(ctx context.Context, texts []string) ([]bool, callOutcome) {
	body, err := json.Marshal(zeroShotRequest{
		Inputs: texts,
		Parameters: zeroShotParameters{
			CandidateLabels: []string{labelQuestion, labelStatement},
			MultiLabel:      false,
		},
	})
	if err != nil {
		events.Errorf(c.sink, "classifier", "failed to encode inference request: %v", err)
		return nil, outcomeFatal
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		events.Errorf(c.sink, "classifier", "failed to build inference request: %v", err)
		return nil, outcomeFatal
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		events.Errorf(c.sink, "classifier", "inference request failed: %v", err)
		return nil, outcomeFatal
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		var results []zeroShotResult
		if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
			// Malformed payload is not a remote fault: the items
			// degrade to false but the call itself succeeded.
			events.Warnf(c.sink, "classifier", "malformed inference response: %v", err)
			return allFalse(len(texts)), outcomeOK
		}
		return scoreResults(results, len(texts)), outcomeOK

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		events.Errorf(c.sink, "classifier", "inference API auth error %d: %s; disabling remote classification", resp.StatusCode, detail)
		return nil, outcomeAuth

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		events.Warnf(c.sink, "classifier", "inference API transient error %d, retrying", resp.StatusCode)
		return nil, outcomeTransient

	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		events.Warnf(c.sink, "classifier", "inference API error %d: %s", resp.StatusCode, detail)
		return nil, outcomeFatal
	}
}

// scoreResults maps per-item label/score pairs back to booleans: true
// iff the "question" label scored above 0.5, false when the label is
// missing from the response.
func scoreResults(results []zeroShotResult, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n && i < len(results); i++ {
		for j, label := range results[i].Labels {
			if label == labelQuestion {
				if j < len(results[i].Scores) {
					out[i] = results[i].Scores[j] > 0.5
				}
				break
			}
		}
	}
	return out
}
