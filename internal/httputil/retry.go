// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the bounded retry loop around endpoint calls.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint returned %d: %s", e.StatusCode, e.Body)
}

// Policy bounds a retry loop.
type Policy struct {
	// Attempts is the total number of requests allowed, including the first.
	// Values below 1 are treated as 1.
	Attempts int

	// Delay is the fixed pause between attempts.
	Delay time.Duration

	// OnRetry, when set, is called after each failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

// maxErrorBody caps how much of a failed response body is kept for logging.
const maxErrorBody = 512

// DoWithRetry sends the request built by build and retries on transport
// failures: connection errors and non-2xx statuses. It makes at most
// p.Attempts requests with a constant p.Delay between them.
//
// Each request runs under a context detached from ctx's cancellation, so an
// interrupt never aborts a request mid-flight; it only stops further attempts.
// The request's own deadline comes from the http.Client timeout.
//
// On success the 2xx response is returned with its body open. On exhaustion
// the last error is returned (a *StatusError for HTTP failures). The second
// return value is the number of requests made.
func DoWithRetry(ctx context.Context, client *http.Client, build func(context.Context) (*http.Request, error), p Policy) (*http.Response, int, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay
	if delay <= 0 {
		delay = time.Nanosecond
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(delay))

	var (
		resp *http.Response
		made int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := build(context.WithoutCancel(ctx))
		if err != nil {
			return err
		}

		made++
		r, err := client.Do(req)
		if err != nil {
			return retryable(p, made, attempts, fmt.Errorf("sending request: %w", err))
		}
		if r.StatusCode < 200 || r.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(r.Body, maxErrorBody))
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			return retryable(p, made, attempts, &StatusError{StatusCode: r.StatusCode, Body: string(body)})
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, made, err
	}
	return resp, made, nil
}

func retryable(p Policy, made, attempts int, err error) error {
	if p.OnRetry != nil && made < attempts {
		p.OnRetry(made, err)
	}
	return retry.RetryableError(err)
}
