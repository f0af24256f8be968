package llm

import (
	"context"
	"net/http"
	"time"
)

const (
	requestTimeout = 30 * time.Second
	retryBackoff   = 500 * time.Millisecond
)

// newHTTPClient returns an HTTP client with a bounded request timeout.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// doWithRetry performs the request built by build, retrying once with a fixed
// backoff on transport errors and 5xx responses. A second failure surfaces
// immediately; there are no retry loops beyond this.
func doWithRetry(ctx context.Context, client *http.Client, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = statusError(resp)
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}
