package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DefaultProviderURL serves USD-based rates for all currencies in one document.
const DefaultProviderURL = "https://open.er-api.com/v6/latest/USD"

const maxResponseBytes = 1 << 20

// HTTPProvider fetches rates from a JSON endpoint returning a "rates" object.
type HTTPProvider struct {
	url       string
	client    *http.Client
	userAgent string
}

// NewHTTPProvider builds a provider for url. A nil client uses http.DefaultClient;
// request deadlines come from the caller's context.
func NewHTTPProvider(url string, client *http.Client) *HTTPProvider {
	if url == "" {
		url = DefaultProviderURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{url: url, client: client, userAgent: "StorefrontBot"}
}

type latestResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	BaseCode  string             `json:"base_code"`
	Rates     map[string]float64 `json:"rates"`
}

// Latest performs one GET and returns the provider's rate table.
func (p *HTTPProvider) Latest(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if body.Result != "" && body.Result != "success" {
		return nil, fmt.Errorf("rate provider result %q (%s)", body.Result, body.ErrorType)
	}
	if len(body.Rates) == 0 {
		return nil, errors.New("rate provider returned no rates")
	}
	return body.Rates, nil
}
