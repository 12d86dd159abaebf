package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/rs/zerolog"
)

// Backend is the analytics API the dashboard reads from and writes to.
type Backend interface {
	Summary(ctx context.Context) (*api.Summary, error)
	Forecast(ctx context.Context, days int) (*api.Forecast, error)
	ProductForecast(ctx context.Context, days int) (*api.ProductForecast, error)
	Segments(ctx context.Context) (*api.Segments, error)
	Upload(ctx context.Context, kind api.UploadKind, filename string, content io.Reader) (*api.UploadResult, error)
	AddCustomer(ctx context.Context, form api.CustomerForm) (*api.MutationResult, error)
	AddProduct(ctx context.Context, form api.ProductForm) (*api.MutationResult, error)
}

type payload interface {
	Failed() bool
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend url is empty")
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Summary(ctx context.Context) (*api.Summary, error) {
	var out api.Summary
	if err := c.get(ctx, "/api/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Forecast(ctx context.Context, days int) (*api.Forecast, error) {
	var out api.Forecast
	if err := c.get(ctx, "/api/forecast", daysQuery(days), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProductForecast(ctx context.Context, days int) (*api.ProductForecast, error) {
	var out api.ProductForecast
	if err := c.get(ctx, "/api/product-forecast", daysQuery(days), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Segments(ctx context.Context) (*api.Segments, error) {
	var out api.Segments
	if err := c.get(ctx, "/api/segments", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Upload(
	ctx context.Context,
	kind api.UploadKind,
	filename string,
	content io.Reader,
) (*api.UploadResult, error) {
	var out api.UploadResult
	err := c.postMultipart(ctx, "/upload/"+string(kind), nil, &filePart{name: filename, content: content}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddCustomer(ctx context.Context, form api.CustomerForm) (*api.MutationResult, error) {
	var out api.MutationResult
	if err := c.postMultipart(ctx, "/add/customer", form.Fields(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddProduct(ctx context.Context, form api.ProductForm) (*api.MutationResult, error) {
	var out api.MutationResult
	if err := c.postMultipart(ctx, "/add/product", form.Fields(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type filePart struct {
	name    string
	content io.Reader
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, path, out)
}

func (c *Client) postMultipart(
	ctx context.Context,
	path string,
	fields []api.FormField,
	file *filePart,
	out payload,
) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, f := range fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", f.Name, err)
		}
	}
	if file != nil {
		part, err := mw.CreateFormFile("file", file.name)
		if err != nil {
			return fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(part, file.content); err != nil {
			return fmt.Errorf("failed to copy %s: %w", file.name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), &body)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return c.do(req, path, out)
}

// do sends req and decodes the body into out. A decodable body carrying
// an error field is a payload, whatever the status code.
func (c *Client) do(req *http.Request, path string, out payload) error {
	logger := zerolog.Ctx(req.Context())

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("backend request failed")
		return fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to read backend response")
		return fmt.Errorf("%s %s: read body: %w", req.Method, path, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: unexpected response (status %d): %w", req.Method, path, resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest && !out.Failed() {
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, path, resp.StatusCode)
	}

	logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Bool("payload_error", out.Failed()).
		Msg("backend response")
	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func daysQuery(days int) url.Values {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	return q
}
