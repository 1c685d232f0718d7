package sdclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"artbot/internal/deadline"
)

// DefaultTimeout is the hard ceiling on one generation call.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of a failed response is kept.
const maxErrorBody = 4096

// Client talks to a Stable Diffusion WebUI compatible backend.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout. It is meant to be set once from
// process configuration, not per call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New constructs a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		// Timeout stays 0: the deadline race owns the ceiling.
		httpClient: &http.Client{Transport: tr, Timeout: 0},
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the configured ceiling.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Generate issues one txt2img call for imageCount images. It returns within
// the configured timeout with the raw body, or fails with HTTPStatusError,
// TimeoutError, or a transport error. Nothing is retried.
func (c *Client) Generate(ctx context.Context, prompt string, imageCount int) (GenerationResult, error) {
	if imageCount < 1 {
		return GenerationResult{}, fmt.Errorf("image count must be at least 1, got %d", imageCount)
	}
	body, err := json.Marshal(NewTxt2ImgRequest(prompt, imageCount))
	if err != nil {
		return GenerationResult{}, fmt.Errorf("encode txt2img request: %w", err)
	}

	raw, elapsed, err := deadline.Run(ctx, c.timeout, func(ctx context.Context) (string, error) {
		return c.post(ctx, Txt2ImgPath, body)
	})
	res := GenerationResult{RawBody: raw, ElapsedMillis: elapsed.Milliseconds()}
	backendDuration.Observe(elapsed.Seconds())

	switch {
	case err == nil:
		backendRequests.WithLabelValues("ok").Inc()
		c.log.Debug().Int64("elapsed_ms", res.ElapsedMillis).Int("bytes", len(raw)).Msg("backend response")
		return res, nil
	case errors.Is(err, deadline.ErrDeadlineExceeded):
		backendRequests.WithLabelValues("timeout").Inc()
		return GenerationResult{ElapsedMillis: res.ElapsedMillis}, &TimeoutError{After: c.timeout, Elapsed: elapsed}
	case IsHTTPStatus(err):
		backendRequests.WithLabelValues("http_status").Inc()
		return GenerationResult{ElapsedMillis: res.ElapsedMillis}, err
	default:
		backendRequests.WithLabelValues("error").Inc()
		return GenerationResult{ElapsedMillis: res.ElapsedMillis}, fmt.Errorf("backend request: %w", err)
	}
}

func (c *Client) post(ctx context.Context, path string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Body:       string(b),
		}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}

// statusText strips the numeric code from resp.Status ("500 Internal Server
// Error" -> "Internal Server Error").
func statusText(resp *http.Response) string {
	s := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if s == "" {
		s = http.StatusText(resp.StatusCode)
	}
	return s
}
