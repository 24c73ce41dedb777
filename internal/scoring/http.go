package scoring

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

	"reviewflow/internal/util"
)

// HTTPScorer calls a model-serving endpoint that accepts a batch of texts
// and returns one probability triple per text.
type HTTPScorer struct {
	keyAlias string
	baseURL  string
	client   *http.Client
}

func NewHTTPScorer(keyAlias string) *HTTPScorer {
	return &HTTPScorer{
		keyAlias: keyAlias,
		baseURL:  resolveScorerURL(keyAlias),
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (h *HTTPScorer) Name() string { return "http" }

func (h *HTTPScorer) Score(ctx context.Context, texts []string) ([][]float64, error) {
	if h.baseURL == "" {
		return nil, fmt.Errorf("%w: no endpoint configured for alias %q", util.ErrBackendUnavailable, h.keyAlias)
	}
	payload, _ := json.Marshal(map[string]any{"texts": texts})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/score", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: score endpoint returned %d", util.ErrBackendUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("score endpoint error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Predictions [][]float64 `json:"predictions"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode score response: %w", err)
	}
	return parsed.Predictions, nil
}

func resolveScorerURL(alias string) string {
	if alias != "" {
		if v := os.Getenv("REVIEWFLOW_SCORER_URL_" + strings.ToUpper(alias)); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return strings.TrimRight(os.Getenv("REVIEWFLOW_SCORER_URL"), "/")
}
