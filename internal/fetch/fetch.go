// Package fetch performs the unauthenticated GET requests shopkeeper makes
// against the game wikis, their image CDNs, and Google Fonts.
//
// Requests go through a retryablehttp client. Retries are off unless
// configured, so a failed page or image aborts the render by default.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	// Decoders for the formats served by the wikis.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/hashicorp/go-retryablehttp"
	_ "golang.org/x/image/webp"
)

// ErrStatus is returned when a server answers with a non-200 status.
var ErrStatus = errors.New("unexpected status")

// maxResponseBytes caps every response body. Wiki pages run to a few MiB.
const maxResponseBytes = 32 << 20

// Options configures a [Client].
type Options struct {
	// Timeout bounds each attempt. Zero means 30 seconds.
	Timeout time.Duration
	// RetryMax is the number of retries after the first attempt.
	RetryMax int
	// UserAgent is sent with every request when non-empty.
	UserAgent string
	// Logger receives retryablehttp's request and retry logs. Nil disables them.
	Logger *slog.Logger
}

// Client fetches pages, images, and raw bytes by URL.
type Client struct {
	http      *retryablehttp.Client
	userAgent string
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	c := retryablehttp.NewClient()
	c.RetryMax = opts.RetryMax
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.HTTPClient.Timeout = opts.Timeout
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = nil
	if opts.Logger != nil {
		c.Logger = opts.Logger
	}
	return &Client{http: c, userAgent: opts.UserAgent}
}

// Bytes returns the body of url.
func (c *Client) Bytes(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %w %d", url, ErrStatus, resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxResponseBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	if int64(len(body)) > maxResponseBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, maxResponseBytes)
	}
	return body, nil
}

// Page returns the markup of url as text.
func (c *Client) Page(ctx context.Context, url string) (string, error) {
	body, err := c.Bytes(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Image fetches and decodes the image at url. PNG, JPEG, GIF, and WebP are
// supported.
func (c *Client) Image(ctx context.Context, url string) (image.Image, error) {
	body, err := c.Bytes(ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}
