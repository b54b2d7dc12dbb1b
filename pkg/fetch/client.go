package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// Error codes carried by domain.FetchError.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeFailed          = "FETCH_FAILED"
	CodeTimeout         = "FETCH_TIMEOUT"
	CodeTooLarge        = "TOO_LARGE"
	CodeInvalidUTF8     = "FETCH_INVALID_UTF8"
)

const (
	DefaultTimeout      = 15 * time.Second
	DefaultMaxRedirects = 5
)

func defaultMaxBytes(kind domain.FetchKind) int64 {
	switch kind {
	case domain.FetchNodeList:
		return 5 * 1024 * 1024
	case domain.FetchRuleBody:
		return 8 * 1024 * 1024
	default:
		return 1 * 1024 * 1024
	}
}

// Options tune a Client. Zero values select the defaults.
type Options struct {
	Timeout      time.Duration // default 15s
	MaxBytes     int64         // default per kind
	MaxRedirects int           // default 5
	Token        string        // sent as "Authorization: token <Token>" to GitHub hosts
	UserAgent    string
}

// Client implements ports.TextFetcher over HTTP.
type Client struct {
	opt       Options
	transport http.RoundTripper
}

var (
	errTooManyRedirects  = errors.New("too many redirects")
	errRedirectBadScheme = errors.New("redirect target scheme is not http/https")
	errInvalidURL        = errors.New("invalid url or scheme")
)

// NewClient creates a Client.
func NewClient(opt Options) *Client {
	if opt.Timeout == 0 {
		opt.Timeout = DefaultTimeout
	}
	if opt.MaxRedirects == 0 {
		opt.MaxRedirects = DefaultMaxRedirects
	}
	if opt.UserAgent == "" {
		opt.UserAgent = "rulecraft"
	}
	return &Client{opt: opt, transport: http.DefaultTransport}
}

// WithTransport returns a copy of the client using rt, for tests.
func (c *Client) WithTransport(rt http.RoundTripper) *Client {
	cp := *c
	cp.transport = rt
	return &cp
}

func (c *Client) fail(kind domain.FetchKind, code, rawURL string, status int, cause error) error {
	return &domain.FetchError{Kind: kind, Code: code, URL: rawURL, Status: status, Cause: cause}
}

// FetchText GETs rawURL and returns the body as UTF-8 text.
func (c *Client) FetchText(ctx context.Context, kind domain.FetchKind, rawURL string) (string, error) {
	maxBytes := c.opt.MaxBytes
	if maxBytes == 0 {
		maxBytes = defaultMaxBytes(kind)
	}
	if maxBytes < 0 {
		return "", c.fail(kind, CodeInvalidArgument, rawURL, 0, errors.New("max bytes must be positive"))
	}

	u, err := url.Parse(rawURL)
	if err != nil || u == nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", c.fail(kind, CodeInvalidArgument, rawURL, 0, errors.Join(errInvalidURL, err))
	}

	maxRedirects := c.opt.MaxRedirects
	client := &http.Client{
		Timeout:   c.opt.Timeout,
		Transport: c.transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errTooManyRedirects
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return errRedirectBadScheme
			}
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", c.fail(kind, CodeInvalidArgument, rawURL, 0, err)
	}
	req.Header.Set("User-Agent", c.opt.UserAgent)
	if c.opt.Token != "" && isGitHubHost(u.Host) {
		req.Header.Set("Authorization", "token "+c.opt.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if errors.Is(err, errRedirectBadScheme) {
			return "", c.fail(kind, CodeInvalidArgument, rawURL, 0, err)
		}
		if isTimeout(ctx, err) {
			return "", c.fail(kind, CodeTimeout, rawURL, 0, err)
		}
		return "", c.fail(kind, CodeFailed, rawURL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.fail(kind, CodeFailed, rawURL, resp.StatusCode, fmt.Errorf("upstream returned %s", resp.Status))
	}

	// Read one byte past the limit to tell "exactly max" from "too large".
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		if isTimeout(ctx, err) {
			return "", c.fail(kind, CodeTimeout, rawURL, resp.StatusCode, err)
		}
		return "", c.fail(kind, CodeFailed, rawURL, resp.StatusCode, err)
	}
	if int64(len(body)) > maxBytes {
		return "", c.fail(kind, CodeTooLarge, rawURL, resp.StatusCode, fmt.Errorf("body exceeds %d bytes", maxBytes))
	}
	if !utf8.Valid(body) {
		return "", c.fail(kind, CodeInvalidUTF8, rawURL, resp.StatusCode, errors.New("body is not valid UTF-8"))
	}
	return string(body), nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isGitHubHost(host string) bool {
	switch host {
	case "api.github.com", "gist.github.com", "gist.githubusercontent.com", "raw.githubusercontent.com":
		return true
	}
	return false
}
