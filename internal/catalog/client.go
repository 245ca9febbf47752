package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/httpclient"
)

// DefaultTimeout bounds each catalog API call. The client never retries; a
// failed sync is reported to the operator instead.
const DefaultTimeout = 30 * time.Second

// ErrTimeout reports that a catalog call exceeded its deadline.
var ErrTimeout = errors.New("catalog request timed out")

// APIError is a non-2xx response from the catalog API.
type APIError struct {
	Status int
	URL    string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog api %d at %s: %s", e.Status, e.URL, ExtractMessage(e.Body))
}

// Config holds the catalog API credentials, resolved once at startup and
// injected into the client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is an authenticated wrapper around the dropship catalog REST API.
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a catalog client. The underlying HTTP client should be
// configured with zero retries; every call is best-effort single-attempt.
func NewClient(httpClient *httpclient.Client, cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		logger:  logger,
	}
}

// Do issues one authenticated request and returns the raw JSON response.
// path is relative to the base URL (e.g. "/rest/catalog/products.json").
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, method, reqURL)
		}
		return nil, fmt.Errorf("catalog request %s %s: %w", method, reqURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, URL: reqURL, Body: string(raw)}
		c.logger.WarnContext(ctx, "catalog api error",
			slog.Int("status", resp.StatusCode),
			slog.String("url", reqURL),
			slog.String("message", ExtractMessage(apiErr.Body)),
		)
		return nil, apiErr
	}

	return json.RawMessage(raw), nil
}

// Get issues an authenticated GET.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Products fetches the product catalog page.
func (c *Client) Products(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.Get(ctx, "/rest/catalog/products.json", query)
}

// Stock fetches current stock levels.
func (c *Client) Stock(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.Get(ctx, "/rest/catalog/productsstock.json", query)
}

// CreateOrder submits a fulfillment order to the dropship supplier.
func (c *Client) CreateOrder(ctx context.Context, order any) (json.RawMessage, error) {
	return c.Post(ctx, "/rest/order/create.json", order)
}
