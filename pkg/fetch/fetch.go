package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"docnorm/pkg/failure"
)

// Client issues a single GET per call. No retry; redirects follow the
// http.Client default policy.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds the whole request including reading the body. Zero disables it.
	Timeout time.Duration
	// MaxBodyBytes rejects larger bodies with a FetchError. Zero means unlimited.
	MaxBodyBytes int64

	Log zerolog.Logger
}

func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		HTTPClient: http.DefaultClient,
		UserAgent:  "docnorm/1.0",
		Timeout:    timeout,
		Log:        log.With().Str("component", "fetcher").Logger(),
	}
}

// Get fetches rawURL and returns the body as text. Failures are *failure.Error
// of kind FetchError, or TimeoutError when the deadline expires.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", failure.New(failure.KindFetch, "invalid URL", err)
	}
	if !isHTTPScheme(u) || u.Host == "" {
		return "", failure.New(failure.KindFetch, "invalid URL", fmt.Errorf("unsupported URL %q", rawURL))
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", failure.New(failure.KindFetch, "invalid URL", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", c.classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", failure.New(failure.KindFetch, "failed to process the URL",
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var body io.Reader = resp.Body
	if c.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, c.MaxBodyBytes+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", c.classify(ctx, fmt.Errorf("read body: %w", err))
	}
	if c.MaxBodyBytes > 0 && int64(len(b)) > c.MaxBodyBytes {
		return "", failure.New(failure.KindFetch, "response body too large",
			fmt.Errorf("body exceeds %d bytes", c.MaxBodyBytes))
	}

	c.Log.Debug().
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Int("bytes", len(b)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched")
	return string(b), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return failure.New(failure.KindTimeout, "fetch timed out", err)
	}
	return failure.New(failure.KindFetch, "failed to process the URL", err)
}

func isHTTPScheme(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
