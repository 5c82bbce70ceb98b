// Package fetch performs throttled, cached GET requests against the upstream
// statistics APIs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Store is the response cache consulted before every request.
type Store interface {
	Get(ctx context.Context, url string, ttl time.Duration) ([]byte, bool, error)
	Put(ctx context.Context, url string, body []byte) error
}

// StatusError is returned for any non-200 upstream answer.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error getting %s: %s", e.URL, e.Status)
}

// IsNotFound reports whether err carries a 404 upstream status.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

type Options struct {
	HTTPClient *http.Client
	Store      Store // nil disables caching
	TTL        time.Duration
	Rate       float64 // requests per second, <= 0 means unlimited
	UserAgent  string
	Logger     *slog.Logger
}

type Client struct {
	http      *http.Client
	store     Store
	ttl       time.Duration
	limiter   *rate.Limiter
	userAgent string
	log       *slog.Logger
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.Rate > 0 {
		burst := int(opts.Rate)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		http:      httpClient,
		store:     opts.Store,
		ttl:       opts.TTL,
		limiter:   limiter,
		userAgent: opts.UserAgent,
		log:       logger,
	}
}

// Get returns the body of url, from the cache when a fresh copy exists.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.store != nil {
		body, found, err := c.store.Get(ctx, url, c.ttl)
		if err != nil {
			c.log.Warn("cache read failed", slog.String("url", url), slog.String("error", err.Error()))
		} else if found {
			c.log.Debug("cache hit", slog.String("url", url))
			return body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	started := time.Now()
	body, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	c.log.Debug("fetched", slog.String("url", url), slog.Int("bytes", len(body)), slog.Duration("took", time.Since(started)))

	if c.store != nil {
		if err := c.store.Put(ctx, url, body); err != nil {
			c.log.Warn("cache write failed", slog.String("url", url), slog.String("error", err.Error()))
		}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	// Make a get request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	// Do the request
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.WithStack(&StatusError{URL: url, Code: resp.StatusCode, Status: resp.Status})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", url)
	}
	return body, nil
}
