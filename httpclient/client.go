// Package httpclient wraps the *http.Client built by cmn.NewClient with the retry envelope and permanent
// vs. transient error classification described in spec §4.5, grounded on the
// teacher's api.doHTTPRequestGetHTTPResp retry loop.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/taoky/tsumugu/cmn"
)

const (
	retryBaseSleep = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// Client is the shared, immutable-after-startup HTTP client every worker
// uses (spec §5 "Policy set and HTTP client: immutable after startup").
type Client struct {
	http      *http.Client
	userAgent string
	retries   int
}

func New(args cmn.TransportArgs, retries int) *Client {
	return &Client{
		http:      cmn.NewClient(args),
		userAgent: args.UserAgent,
		retries:   retries,
	}
}

// PermanentError wraps a non-retryable HTTP response: any 4xx other than
// 429, per spec §4.5.
type PermanentError struct {
	URL    string
	Status int
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent HTTP error %d for %s", e.Status, e.URL)
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Do executes req with the retry envelope: transient network errors and
// transient HTTP statuses (429, 5xx) are retried with exponential backoff up
// to c.retries times; any other 4xx is returned as a *PermanentError without
// retrying, since retrying it can never succeed (spec §4.5).
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	sleep := retryBaseSleep
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(sleep):
			}
			sleep *= 2
			if sleep > maxBackoff {
				sleep = maxBackoff
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if cmn.IsErrConnectionReset(err) || cmn.IsErrConnectionRefused(err) {
				continue
			}
			return nil, errors.Wrapf(err, "request to %s failed", req.URL)
		}

		if isTransientStatus(resp.StatusCode) {
			resp.Body.Close()
			lastErr = &cmn.TransientNetworkError{URL: req.URL.String(), Cause: fmt.Errorf("HTTP status %d", resp.StatusCode)}
			continue
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, &PermanentError{URL: req.URL.String(), Status: resp.StatusCode}
		}
		return resp, nil
	}
	return nil, errors.Wrapf(lastErr, "exhausted %d retries for %s", c.retries, req.URL)
}

// Get issues a GET with the retry envelope and the configured user agent.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Head issues a HEAD with the retry envelope.
func (c *Client) Head(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}
