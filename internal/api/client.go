// Package api is the HTTP client for the BillWell REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/service"
)

// DefaultBaseURL is the hosted BillWell API.
const DefaultBaseURL = "https://bill-backend-1-z17b.onrender.com/api"

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

var _ service.RecordSource = (*Client)(nil)

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	Retry      service.RetryOptions
	Timeout    time.Duration
	// RateLimit is requests per second. Zero disables pacing.
	RateLimit float64
	Burst     int
}

// Client talks to the remote API. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
	baseURL    string
	token      string
	retry      service.RetryOptions
}

// NewClient creates a client from opts.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", base, common.ErrInvalidConfig)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = max(1, int(opts.RateLimit))
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		now:        time.Now,
		baseURL:    base,
		token:      strings.TrimSpace(opts.Token),
		retry:      opts.Retry,
	}, nil
}

// WithToken returns a copy of c that sends token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

// HasToken reports whether requests carry a bearer token.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch returns the raw body of kind's collection. A cache-busting _t
// parameter is added so every call sees fresh data.
func (c *Client) Fetch(ctx context.Context, kind model.Kind) ([]byte, error) {
	q := url.Values{}
	q.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))
	body, err := c.do(ctx, http.MethodGet, kind.Path(), q, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", kind, err)
	}
	return body, nil
}

// UpdateInvoiceStatus patches one invoice's status on the server.
func (c *Client) UpdateInvoiceStatus(ctx context.Context, id, status string) error {
	if strings.TrimSpace(id) == "" {
		return common.Permanent(errors.New("invoice id is required"))
	}
	path := "/invoices/" + url.PathEscape(id) + "/status"
	_, err := c.do(ctx, http.MethodPatch, path, nil, map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("failed to update invoice %s status: %w", id, err)
	}
	return nil
}

// do performs one API call with pacing and retries and returns the body of a
// 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	var encoded []byte
	if payload != nil {
		var err error
		encoded, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body []byte
	err := common.WithRetry(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return common.Permanent(err)
		}

		var reader io.Reader
		if encoded != nil {
			reader = bytes.NewReader(encoded)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return common.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if encoded != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		common.LogDebug(ctx, "API request", common.Fields{"method": method, "path": path})

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return common.Permanent(ctx.Err())
			}
			return common.Transient(fmt.Errorf("request %s %s: %w", method, path, err))
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return classify(method, path, resp)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return common.Transient(fmt.Errorf("failed to read response: %w", err))
		}
		body = data
		return nil
	}, c.retry)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// classify turns a non-2xx response into an error WithRetry understands.
func classify(method, path string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &common.APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(data)),
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return common.Transient(fmt.Errorf("%w: %w", common.ErrRateLimit, apiErr))
	case resp.StatusCode >= 500:
		return common.Transient(apiErr)
	default:
		return common.Permanent(apiErr)
	}
}
