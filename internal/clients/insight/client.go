package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/medloop/medloop-backend/internal/logger"
)

// Client talks to the external Python insight service that grades
// free-text answers. JSON over HTTP, request-scoped, no retries here;
// callers decide whether a grading failure is fatal.
type Client interface {
	ScoreFreeText(ctx context.Context, req ScoreRequest) (*ScoreResult, error)
}

type ScoreRequest struct {
	ObjectiveID string `json:"objective_id"`
	PromptStem  string `json:"prompt_stem"`
	Answer      string `json:"answer"`
}

type ScoreResult struct {
	Score    float64  `json:"score"`
	Feedback string   `json:"feedback"`
	Missing  []string `json:"missing_concepts,omitempty"`
}

type client struct {
	log     *logger.Logger
	baseURL string
	http    *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimSpace(os.Getenv("INSIGHT_SERVICE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing INSIGHT_SERVICE_URL")
	}
	return &client{
		log:     log.With("service", "InsightClient"),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *client) ScoreFreeText(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode score request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build score request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("insight service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("insight service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result ScoreResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode score response: %w", err)
	}
	return &result, nil
}
