// Package feed pulls raw vehicle listings from upstream scraper feed
// services.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// ErrDailyLimitExceeded is returned when an upstream feed reports its daily
// quota is spent; callers should back off until the next window.
var ErrDailyLimitExceeded = errors.New("feed daily quota exceeded")

type Client struct {
	key     string
	baseURL string
	http    *retryablehttp.Client
	limiter *rate.Limiter
}

// NewClient builds a feed client for the given base URL. Requests are retried
// with backoff and paced at requestsPerSecond to stay inside upstream quotas
// (<= 0 means 2 rps).
func NewClient(baseURL, apiKey string, requestsPerSecond float64) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 6 * time.Second
	rc.Logger = nil

	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}

	return &Client{
		key:     apiKey,
		baseURL: baseURL,
		http:    rc,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// FetchListings pulls one page of raw listings for a source platform.
// Common filters: make, model, max_price.
func (c *Client) FetchListings(ctx context.Context, source string, pageSize, page int, brand, model string, maxPrice float64) ([]byte, error) {
	q := url.Values{}
	q.Set("source", source)
	if pageSize > 0 {
		q.Set("page_size", fmt.Sprintf("%d", pageSize))
	}
	if page > 0 {
		q.Set("page", fmt.Sprintf("%d", page))
	} else {
		q.Set("page", "1")
	}
	if brand != "" {
		q.Set("make", brand)
	}
	if model != "" {
		q.Set("model", model)
	}
	if maxPrice > 0 {
		q.Set("max_price", fmt.Sprintf("%.0f", maxPrice))
	}

	u := fmt.Sprintf("%s/api/listings?%s", c.baseURL, q.Encode())
	return c.get(ctx, u)
}

// FetchSources lists the source platforms the feed can serve.
func (c *Client) FetchSources(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.baseURL+"/api/sources")
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	if c.key != "" {
		req.Header.Set("x-api-key", c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrDailyLimitExceeded
	}
	if resp.StatusCode >= 400 {
		var body map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, fmt.Errorf("feed error %d: %v", resp.StatusCode, body)
	}
	return ioReadAllLimit(resp.Body, 4<<20) // 4MB guard
}

func ioReadAllLimit(r io.Reader, limit int64) ([]byte, error) {
	lr := io.LimitReader(r, limit+1)
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}
