package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxAttempts = 3

// Client handles communication with the Open Food Facts product API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new Open Food Facts API client limited to requestsPerMinute
func NewClient(baseURL, userAgent string, requestsPerMinute int, logger *zap.Logger) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 100
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: limiter,
		logger:      logger.Named("openfoodfacts"),
	}
}

// exponentialBackoff returns the delay before retry attempt n (1-based)
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// LookupBarcode fetches the product for barcode, returning domain.ErrProductNotFound when unknown
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))
	c.logger.Debug("looking up barcode", zap.String("barcode", barcode))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, status, err := c.get(ctx, reqURL)
		if err != nil {
			c.logger.Warn("request failed", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			if !c.sleep(ctx, attempt) {
				return nil, ctx.Err()
			}
			continue
		}

		switch {
		case status == http.StatusNotFound:
			return nil, domain.ErrProductNotFound
		case status >= 500 || status == http.StatusTooManyRequests:
			c.logger.Warn("server error", zap.Int("attempt", attempt), zap.Int("status", status))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProductAPIFailure, status)
			if !c.sleep(ctx, attempt) {
				return nil, ctx.Err()
			}
			continue
		case status != http.StatusOK:
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrProductAPIFailure, status, truncate(body, 200))
		}

		var resp productResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrProductAPIFailure, err)
		}
		if resp.Status != 1 || resp.Product == nil {
			c.logger.Info("product not found", zap.String("barcode", barcode), zap.String("status", resp.StatusVerbose))
			return nil, domain.ErrProductNotFound
		}

		product := MapToProduct(barcode, resp.Product)
		c.logger.Info("product found", zap.String("barcode", barcode), zap.String("name", product.ProductName))
		return product, nil
	}

	c.logger.Error("all retries failed", zap.String("barcode", barcode), zap.Error(lastErr))
	return nil, lastErr
}

// get executes a GET request and returns the body and status code
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrProductAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read body: %v", domain.ErrProductAPIFailure, err)
	}
	return body, resp.StatusCode, nil
}

// sleep waits before the next attempt; it returns false when ctx is done first
func (c *Client) sleep(ctx context.Context, attempt int) bool {
	if attempt == maxAttempts {
		return true
	}
	timer := time.NewTimer(exponentialBackoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
