package l10n

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPFetcher loads resources from a remote base URL.
type HTTPFetcher struct {
	client *resty.Client
}

var _ FileFetcher = &HTTPFetcher{}

type HTTPFetcherOption func(*resty.Client)

// WithHTTPRetries retries transport failures count times waiting wait between attempts
func WithHTTPRetries(count int, wait time.Duration) HTTPFetcherOption {
	return func(c *resty.Client) {
		c.SetRetryCount(count)
		if wait > 0 {
			c.SetRetryWaitTime(wait)
		}
	}
}

func WithHTTPTimeout(timeout time.Duration) HTTPFetcherOption {
	return func(c *resty.Client) {
		if timeout > 0 {
			c.SetTimeout(timeout)
		}
	}
}

func WithHTTPHeader(key, value string) HTTPFetcherOption {
	return func(c *resty.Client) {
		c.SetHeader(key, value)
	}
}

func NewHTTPFetcher(baseURL string, opts ...HTTPFetcherOption) *HTTPFetcher {
	client := resty.New().SetBaseURL(strings.TrimRight(baseURL, "/"))
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return &HTTPFetcher{client: client}
}

// Client exposes the underlying resty client (transport mocking, middleware)
func (f *HTTPFetcher) Client() *resty.Client {
	return f.client
}

func (f *HTTPFetcher) FetchSync(path string) (string, error) {
	return f.Fetch(context.Background(), path)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, path string) (string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get("/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", &FetchError{Kind: FetchIO, Path: path, Err: err}
	}

	switch status := resp.StatusCode(); {
	case resp.IsSuccess():
		return resp.String(), nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return "", &FetchError{Kind: FetchNotFound, Path: path}
	default:
		return "", &FetchError{Kind: FetchIO, Path: path, Err: fmt.Errorf("unexpected status %d", status)}
	}
}
