package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"iviweb/internal/system"
	"iviweb/internal/version"
)

// ErrTransport wraps fetch and submission failures.
var ErrTransport = errors.New("transport failure")

// maxBody caps the size of a fetched page.
const maxBody = 4 << 20

// Client fetches pages and submits forms over HTTP. It implements
// screen.Submitter.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient returns a client whose requests time out after timeout. A
// non-positive timeout disables the limit.
func NewClient(timeout time.Duration) *Client {
	hc := &http.Client{}
	if timeout > 0 {
		hc.Timeout = timeout
	}
	return &Client{http: hc, userAgent: "iviweb/" + version.AppVersion}
}

// Fetch GETs rawURL and returns the body. Non-2xx answers are logged and
// their body returned, so servers can still show their own error pages.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	body, _, err := c.do(req)
	return body, err
}

// Submit sends fields to endpoint. GET sends them as a query string, any
// other method as a form-encoded body. It returns the URL of the final
// response after redirects.
func (c *Client) Submit(ctx context.Context, endpoint, method string, fields url.Values) (string, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}
	var (
		req *http.Request
		err error
	)
	if method == http.MethodGet {
		u, perr := url.Parse(endpoint)
		if perr != nil {
			return "", fmt.Errorf("%w: %w", ErrTransport, perr)
		}
		q := u.Query()
		for k, vs := range fields {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, method, u.String(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(fields.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	_, final, err := c.do(req)
	if err != nil {
		return "", err
	}
	system.Logger.Info("form submitted", "endpoint", endpoint, "method", method, "fields", len(fields), "final", final)
	return final, nil
}

func (c *Client) do(req *http.Request) (string, string, error) {
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", "", fmt.Errorf("%w: read %s: %w", ErrTransport, req.URL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		system.Logger.Warn("unexpected status", "url", req.URL.String(), "status", resp.StatusCode)
	}
	return string(b), resp.Request.URL.String(), nil
}
