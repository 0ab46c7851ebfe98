package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxAttempts = 3

// Client looks up branded foods in USDA FoodData Central by GTIN/UPC.
// It is used as the fallback product source when Open Food Facts has no match.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new USDA API client
func NewClient(apiKey, baseURL string, logger *zap.Logger) *Client {
	// USDA allows 1000 requests per hour
	// rate.Limit is requests per second, so 1000/3600 ≈ 0.278 requests/sec
	limiter := rate.NewLimiter(rate.Limit(0.278), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
		logger:      logger.Named("usda"),
	}
}

// exponentialBackoff returns the delay before retry attempt n (1-based)
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// LookupBarcode searches branded foods for barcode and returns the entry whose GTIN matches
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	searchResp, err := c.searchBranded(ctx, barcode)
	if err != nil {
		return nil, err
	}

	food := findByGTIN(searchResp.Foods, barcode)
	if food == nil {
		c.logger.Info("no GTIN match", zap.String("barcode", barcode), zap.Int("candidates", len(searchResp.Foods)))
		return nil, domain.ErrProductNotFound
	}

	product := MapToProduct(barcode, food)
	c.logger.Info("product found", zap.String("barcode", barcode), zap.Int("fdc_id", food.FdcID))
	return product, nil
}

// searchBranded queries the foods/search endpoint restricted to branded foods
func (c *Client) searchBranded(ctx context.Context, query string) (*searchResponse, error) {
	endpoint := fmt.Sprintf("%s/v1/foods/search", c.baseURL)
	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", c.apiKey)
	params.Add("dataType", "Branded")
	params.Add("pageSize", "10")

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, status, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.logger.Warn("request failed", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			if !c.sleep(ctx, attempt) {
				return nil, ctx.Err()
			}
			continue
		}

		if status == http.StatusNotFound {
			return nil, domain.ErrProductNotFound
		}
		if status >= 500 || status == http.StatusTooManyRequests {
			c.logger.Warn("server error", zap.Int("attempt", attempt), zap.Int("status", status))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProductAPIFailure, status)
			if !c.sleep(ctx, attempt) {
				return nil, ctx.Err()
			}
			continue
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", domain.ErrProductAPIFailure, status)
		}

		var searchResp searchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrProductAPIFailure, err)
		}
		if len(searchResp.Foods) == 0 {
			return nil, domain.ErrProductNotFound
		}
		return &searchResp, nil
	}

	c.logger.Error("all retries failed", zap.String("query", query), zap.Error(lastErr))
	return nil, lastErr
}

// doRequest executes an HTTP GET request and returns the body and status code
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "NutriScan/1.0")

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

// findByGTIN returns the first food whose GTIN equals barcode, ignoring leading zeros
func findByGTIN(foods []food, barcode string) *food {
	want := strings.TrimLeft(barcode, "0")
	for i := range foods {
		if want != "" && strings.TrimLeft(foods[i].GTINUPC, "0") == want {
			return &foods[i]
		}
	}
	return nil
}
