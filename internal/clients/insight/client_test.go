package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/medloop/medloop-backend/internal/logger"
)

func newTestClient(baseURL string) *client {
	return &client{
		log:     logger.NewNop(),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func TestScoreFreeText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/score" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req ScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Answer != "beta blockade reduces myocardial oxygen demand" {
			t.Errorf("answer not forwarded: %q", req.Answer)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ScoreResult{
			Score:    0.88,
			Feedback: "Good mechanism; mention contraindications.",
			Missing:  []string{"contraindications"},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	result, err := c.ScoreFreeText(context.Background(), ScoreRequest{
		ObjectiveID: "obj-1",
		PromptStem:  "Explain how beta blockers help in stable angina.",
		Answer:      "beta blockade reduces myocardial oxygen demand",
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Score != 0.88 {
		t.Fatalf("score = %v, want 0.88", result.Score)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "contraindications" {
		t.Fatalf("missing concepts not decoded: %v", result.Missing)
	}
}

func TestScoreFreeTextUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.ScoreFreeText(context.Background(), ScoreRequest{Answer: "x"})
	if err == nil {
		t.Fatalf("expected error on 503")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("error should carry status and body, got %v", err)
	}
}

func TestScoreFreeTextContextCancelled(t *testing.T) {
	// The handler is released after the client call returns so the
	// server can drain the connection on Close.
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := newTestClient(server.URL)
	_, err := c.ScoreFreeText(ctx, ScoreRequest{Answer: "x"})
	close(release)
	if err == nil {
		t.Fatalf("expected error when the context deadline passes")
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Setenv("INSIGHT_SERVICE_URL", "")
	if _, err := NewClient(logger.NewNop()); err == nil {
		t.Fatalf("expected error without INSIGHT_SERVICE_URL")
	}

	t.Setenv("INSIGHT_SERVICE_URL", "http://insight.internal/")
	c, err := NewClient(logger.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.(*client).baseURL != "http://insight.internal" {
		t.Fatalf("trailing slash not trimmed: %q", c.(*client).baseURL)
	}
}
