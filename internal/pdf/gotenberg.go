// Package pdf converts the rendered overview into a PDF through a Gotenberg
// service.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/billwell/internal/common"
	"github.com/Veraticus/billwell/internal/report"
	"github.com/Veraticus/billwell/internal/service"
)

// Client wraps the Gotenberg HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the Gotenberg instance at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Ping checks that the service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return common.Transient(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts an HTML page to PDF bytes.
func (c *Client) RenderHTML(ctx context.Context, html []byte) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, bytes.NewReader(html)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.Transient(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		err := fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
		if resp.StatusCode >= 500 {
			return nil, common.Transient(err)
		}
		return nil, common.Permanent(err)
	}
	return io.ReadAll(resp.Body)
}

// Exporter renders a report.Document to PDF.
type Exporter struct {
	client   *Client
	renderer *report.HTMLRenderer
	retry    service.RetryOptions
}

// NewExporter creates an exporter for the Gotenberg instance at baseURL.
func NewExporter(baseURL string, retry service.RetryOptions) (*Exporter, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("gotenberg url: %w", common.ErrMissingConfig)
	}
	renderer, err := report.NewHTMLRenderer()
	if err != nil {
		return nil, err
	}
	return &Exporter{
		client:   NewClient(baseURL),
		renderer: renderer,
		retry:    retry,
	}, nil
}

// Ping checks that the Gotenberg instance answers before a report is built.
func (e *Exporter) Ping(ctx context.Context) error {
	return e.client.Ping(ctx)
}

// Export renders doc to HTML and converts it, retrying transient failures.
func (e *Exporter) Export(ctx context.Context, doc report.Document) ([]byte, error) {
	html, err := e.renderer.Render(doc)
	if err != nil {
		return nil, err
	}
	return e.convert(ctx, "overview", html)
}

// ExportExpenses renders an expense list to PDF.
func (e *Exporter) ExportExpenses(ctx context.Context, expenses report.ExpenseReport) ([]byte, error) {
	html, err := e.renderer.RenderExpenses(expenses)
	if err != nil {
		return nil, err
	}
	return e.convert(ctx, "expenses", html)
}

func (e *Exporter) convert(ctx context.Context, name string, html []byte) ([]byte, error) {
	var out []byte
	err := common.WithRetry(ctx, func() error {
		pdf, renderErr := e.client.RenderHTML(ctx, html)
		if renderErr != nil {
			return renderErr
		}
		out = pdf
		return nil
	}, e.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s to pdf: %w", name, err)
	}
	slog.Debug("rendered pdf", "document", name, "bytes", len(out))
	return out, nil
}
