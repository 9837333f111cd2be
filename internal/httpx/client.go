// Package httpx wraps outbound HTTP calls with exponential backoff for the
// upstream APIs that rate limit aggressively.
package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Doer is the subset of *http.Client used by the collectors.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

const maxRetries = 4

// Get issues a GET request and retries on 429 and 5xx responses with
// exponential backoff. The final response is returned unread; callers own
// the body. Non-retryable statuses are returned as-is, not as errors.
func Get(ctx context.Context, client Doer, url string, header http.Header) (*http.Response, error) {
	logger := zerolog.Ctx(ctx)

	var resp *http.Response
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		r, err := client.Do(req)
		if err != nil {
			return err
		}

		if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
			// Drain so the connection can be reused across attempts.
			_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, 4096))
			_ = r.Body.Close()
			logger.Warn().Int("status", r.StatusCode).Str("url", url).Msg("Retryable HTTP status, backing off")
			return fmt.Errorf("retryable status %d from %s", r.StatusCode, url)
		}

		resp = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newExponential(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

func newExponential() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 60 * time.Second
	return b
}
