// Package partsws implements the CatalogClient contract against the parts
// web service HTTP API.
package partsws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"catalog-sync-service/internal/clients"
	"golang.org/x/time/rate"
)

// Client talks to the parts web service. All calls are rate limited and
// retried on transient failures.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
	retrier     *clients.Retrier
}

// NewClient creates a new parts web service client
func NewClient(baseURL, apiKey string, requestsPerSecond int) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		retrier:     clients.NewRetrier(clients.DefaultRetryConfig()),
	}
}

// rawPage mirrors the wire shape of the pagination block. A pointer so that
// its absence is detectable.
type rawPage struct {
	CurrentPage    *int `json:"current_page"`
	AvailablePages *int `json:"available_pages"`
}

type matchPageResponse struct {
	Page     *rawPage                     `json:"page"`
	Match    []clients.Match              `json:"match"`
	Products []clients.DistributorProduct `json:"products"`
	Error    string                       `json:"error"`
}

type productListResponse struct {
	Page     *rawPage               `json:"page"`
	Products []clients.ProductEntry `json:"products"`
	Error    string                 `json:"error"`
}

// FetchMatchPage fetches one page of the identifier match index.
func (c *Client) FetchMatchPage(ctx context.Context, kind clients.MatchKind, page int) (*clients.MatchPageResult, error) {
	endpoint := "/matches/" + string(kind)

	body, err := c.doRequest(ctx, http.MethodGet, endpoint+"?page="+strconv.Itoa(page), nil)
	if err != nil {
		return nil, err
	}

	var resp matchPageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	pageInfo, err := validatePage(endpoint, resp.Page, resp.Error)
	if err != nil {
		return nil, err
	}

	return &clients.MatchPageResult{
		Page:                *pageInfo,
		Matches:             resp.Match,
		DistributorProducts: resp.Products,
	}, nil
}

// FetchProductList fetches product payloads for the given external ids.
func (c *Client) FetchProductList(ctx context.Context, externalIDs []int64, filter clients.ProductListFilter) (*clients.ProductListResult, error) {
	endpoint := "/products"

	payload, err := json.Marshal(map[string]interface{}{
		"products_id": externalIDs,
		"filter":      string(filter),
	})
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var resp productListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	pageInfo, err := validatePage(endpoint, resp.Page, resp.Error)
	if err != nil {
		return nil, err
	}

	return &clients.ProductListResult{
		Page:     *pageInfo,
		Products: resp.Products,
	}, nil
}

// validatePage enforces the pagination contract: a response without
// available_pages cannot be consumed.
func validatePage(endpoint string, page *rawPage, remoteErr string) (*clients.PageInfo, error) {
	if page == nil || page.AvailablePages == nil {
		return nil, &clients.MissingPageCountError{Endpoint: endpoint, RemoteMessage: remoteErr}
	}
	info := &clients.PageInfo{AvailablePages: *page.AvailablePages}
	if page.CurrentPage != nil {
		info.CurrentPage = *page.CurrentPage
	}
	return info, nil
}

// doRequest performs an HTTP request with rate limiting and retries and
// returns the response body.
func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retrier.MaxRetries(); attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if !c.retrier.ShouldRetry(0, err) {
				return nil, err
			}
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if readErr != nil {
					return nil, readErr
				}
				return body, nil
			}

			lastErr = fmt.Errorf("request %s %s failed with status %d", method, path, resp.StatusCode)
			if !c.retrier.ShouldRetry(resp.StatusCode, nil) {
				return nil, lastErr
			}

			retryAfter := clients.ParseRetryAfter(resp)
			if attempt < c.retrier.MaxRetries() {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(c.retrier.Backoff(attempt, retryAfter)):
				}
				continue
			}
		}

		if attempt < c.retrier.MaxRetries() {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retrier.Backoff(attempt, 0)):
			}
		}
	}

	return nil, fmt.Errorf("max retries exceeded for %s %s: %w", method, path, lastErr)
}
