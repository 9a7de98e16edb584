package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ashraf950/timesheet-client/internal"
	"github.com/ashraf950/timesheet-client/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues authenticated calls against the REST backend. It never
// retries; a failed call surfaces as *internal.AppError.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

func NewClient(cfg Config, tokens TokenSource, lg *slog.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = internal.DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: cfg.Timeout,
		client:  httpClient,
		tokens:  tokens,
		logger:  lg,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Download is a raw response body plus what the server said about it.
type Download struct {
	Body        []byte
	ContentType string
	Filename    string
}

// Download fetches a file-like response without interpreting the body.
func (c *Client) Download(ctx context.Context, path string, query url.Values) (*Download, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	d := &Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			d.Filename = params["filename"]
		}
	}
	return d, nil
}

type response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, internal.NewInternalError("failed to marshal request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := internal.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := logger.FromOr(ctx, c.logger).With("request_id", requestID, "method", method, "path", path)

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, internal.NewInternalError("failed to create HTTP request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	log.Debug("sending request")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err)
		return nil, internal.NewNetworkError(path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("failed to read response body", "error", err)
		return nil, internal.NewNetworkError(path, fmt.Errorf("response read error: %w", err))
	}

	log.Debug("received response",
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := backendMessage(respBody)
		log.Info("backend returned error status", "status", resp.StatusCode, "message", message)
		return nil, internal.NewHTTPError(resp.StatusCode, path, message)
	}

	return &response{Status: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

// backendMessage pulls a human-readable message out of an error body.
// Both {message: "..."} and {error: {message: "..."}} are in use.
func backendMessage(body []byte) string {
	var envelope struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	if len(envelope.Error) == 0 {
		return ""
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err == nil && nested.Message != "" {
		return nested.Message
	}
	var plain string
	if err := json.Unmarshal(envelope.Error, &plain); err == nil {
		return plain
	}
	return ""
}
