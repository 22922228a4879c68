package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HuggingFaceClient, *int32) {
	t.Helper()
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewHuggingFace("test-key", nil)
	c.baseURL = srv.URL
	c.sleep = func(time.Duration) {}
	return c, &requests
}

func writeResults(w http.ResponseWriter, results []zeroShotResult) {
	_ = json.NewEncoder(w).Encode(results)
}

func TestClassifyBatchScores(t *testing.T) {
	var gotReq zeroShotRequest
	c, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		writeResults(w, []zeroShotResult{
			{Labels: []string{"question", "statement"}, Scores: []float64{0.9, 0.1}},
			{Labels: []string{"statement", "question"}, Scores: []float64{0.8, 0.2}},
			{Labels: []string{"statement"}, Scores: []float64{1.0}}, // question label absent
		})
	})

	got := c.ClassifyBatch(context.Background(), []string{"a b c", "d e f", "g h i"})

	if *requests != 1 {
		t.Fatalf("expected 1 request, got %d", *requests)
	}
	want := []bool{true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected results: %v", got)
		}
	}
	if len(gotReq.Inputs) != 3 {
		t.Fatalf("unexpected inputs: %v", gotReq.Inputs)
	}
	if len(gotReq.Parameters.CandidateLabels) != 2 || gotReq.Parameters.CandidateLabels[0] != "question" {
		t.Fatalf("unexpected candidate labels: %v", gotReq.Parameters.CandidateLabels)
	}
}

func TestClassifyBatchEmptyInput(t *testing.T) {
	c, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeResults(w, nil)
	})

	got := c.ClassifyBatch(context.Background(), nil)
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
	if *requests != 0 {
		t.Fatalf("empty input must not hit the network")
	}
}

func TestClassifyBatchRetriesTransient(t *testing.T) {
	var attempt int32
	c, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempt, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeResults(w, []zeroShotResult{
			{Labels: []string{"question", "statement"}, Scores: []float64{0.7, 0.3}},
		})
	})

	got := c.ClassifyBatch(context.Background(), []string{"x y z"})
	if *requests != 3 {
		t.Fatalf("expected 3 attempts, got %d", *requests)
	}
	if !got[0] {
		t.Fatalf("expected question after recovery, got %v", got)
	}

	// Success reset the failure counter; the next call still hits the network.
	_ = c.ClassifyBatch(context.Background(), []string{"x y z"})
	if *requests != 4 {
		t.Fatalf("expected 4 requests after reset, got %d", *requests)
	}
}

func TestCircuitBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	c, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < maxConsecutiveFailures; i++ {
		got := c.ClassifyBatch(context.Background(), []string{"a b c"})
		if got[0] {
			t.Fatalf("failed batch must degrade to false")
		}
	}
	after := *requests

	got := c.ClassifyBatch(context.Background(), []string{"a b c"})
	if got[0] {
		t.Fatalf("tripped breaker must return false")
	}
	if *requests != after {
		t.Fatalf("tripped breaker must not hit the network: %d -> %d", after, *requests)
	}
}

func TestAuthFailureTripsImmediately(t *testing.T) {
	c, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	got := c.ClassifyBatch(context.Background(), []string{"a b c"})
	if got[0] {
		t.Fatalf("auth failure must degrade to false")
	}
	if *requests != 1 {
		t.Fatalf("auth failure must not be retried, got %d requests", *requests)
	}

	_ = c.ClassifyBatch(context.Background(), []string{"a b c"})
	if *requests != 1 {
		t.Fatalf("breaker must stay open after auth failure")
	}
}

func TestUnexpectedStatusAbandonsRetries(t *testing.T) {
	c, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	got := c.ClassifyBatch(context.Background(), []string{"a b c"})
	if got[0] {
		t.Fatalf("unexpected status must degrade to false")
	}
	if *requests != 1 {
		t.Fatalf("unexpected status must not be retried, got %d requests", *requests)
	}
}

func TestMalformedResponseIsNotAFailure(t *testing.T) {
	c, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	got := c.ClassifyBatch(context.Background(), []string{"a b c"})
	if got[0] {
		t.Fatalf("malformed response must degrade to false")
	}

	// The call succeeded at the HTTP level, so the breaker is untouched
	// and the next batch still goes out.
	_ = c.ClassifyBatch(context.Background(), []string{"a b c"})
	if *requests != 2 {
		t.Fatalf("expected 2 requests, got %d", *requests)
	}
}
