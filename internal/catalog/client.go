package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/despensa-ai/order-engine/internal/observability"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// ClientConfig holds catalog service client settings.
type ClientConfig struct {
	// BaseURL is the root of the remote catalog API.
	BaseURL string
	// RequestDelay is the fixed pause honored before every outbound request.
	RequestDelay time.Duration
	// Timeout bounds each individual network call.
	Timeout time.Duration
	// UserAgent overrides the default request user agent.
	UserAgent string
}

// Client is the HTTP client for the remote category service. A shared rate
// limiter enforces the per-request delay even when calls run concurrently.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *observability.Logger
}

// NewClient creates a catalog service client.
func NewClient(cfg ClientConfig, logger *observability.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// TopCategories fetches the top-level categories, each optionally embedding
// one level of subcategories.
func (c *Client) TopCategories(ctx context.Context) ([]wireCategory, error) {
	var list wireCategoryList
	if err := c.get(ctx, c.baseURL+"/categories/", &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// CategoryTree fetches one category's children, one level deeper than the
// top-level listing; at this depth the children embed the actual products.
func (c *Client) CategoryTree(ctx context.Context, id int) (*wireCategory, error) {
	var cat wireCategory
	if err := c.get(ctx, fmt.Sprintf("%s/categories/%d", c.baseURL, id), &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// get performs one rate-limited GET and decodes the JSON body.
func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("catalog request %s: unexpected status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response %s: %w", url, err)
	}

	c.logger.Debug().
		Str("url", url).
		Dur("elapsed", time.Since(start)).
		Msg("Catalog request completed")

	return nil
}
