package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-audience-dashboard/components/audience"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultEndpoint = "/audiences/generate"
)

// HTTPConfig configures the remote audience generator.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	// Endpoint is appended to BaseURL. Defaults to /audiences/generate.
	Endpoint   string
	HTTPClient *http.Client
}

// HTTPGenerator implements audience.Generator against a remote inference service.
type HTTPGenerator struct {
	url    string
	apiKey string
	client *http.Client
}

var _ audience.Generator = (*HTTPGenerator)(nil)

// NewHTTPGenerator builds a generator that posts targeting input to a remote backend.
func NewHTTPGenerator(cfg HTTPConfig) (*HTTPGenerator, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("inference: base url is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPGenerator{
		url:    strings.TrimSuffix(cfg.BaseURL, "/") + endpoint,
		apiKey: cfg.APIKey,
		client: httpClient,
	}, nil
}

// Generate sends the targeting form with its parsed interests and returns the
// remote batch. Scores are clamped by the session, not here.
func (g *HTTPGenerator) Generate(ctx context.Context, input audience.TargetingInput) ([]audience.Record, error) {
	payload := generateRequest{Input: input, Interests: input.InterestList()}
	var resp generateResponse
	if err := g.do(ctx, payload, &resp); err != nil {
		return nil, err
	}
	return resp.Audiences, nil
}

func (g *HTTPGenerator) do(ctx context.Context, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("inference: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("inference: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("inference: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("inference: decode response: %w", err)
	}
	return nil
}

type generateRequest struct {
	Input     audience.TargetingInput `json:"input"`
	Interests []string                `json:"interests"`
}

type generateResponse struct {
	Audiences []audience.Record `json:"audiences"`
}
