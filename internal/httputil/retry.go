// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

// MaxRetryDelay caps a single backoff wait, including Retry-After hints.
var MaxRetryDelay = 30 * time.Second

const defaultMaxAttempts = 4

// Retryable reports whether a response status is worth retrying: 429 and
// any 5xx.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry executes an HTTP request and retries on HTTP 429, 5xx
// responses, and transport errors with exponential backoff. The delay starts
// at RetryBaseDelay and doubles each attempt; a Retry-After header in seconds
// replaces the computed delay. Every wait is capped at MaxRetryDelay.
//
// maxAttempts counts every request including the first; 0 selects the
// default (4). On each retry the response body is drained and closed before
// sleeping. If the context is cancelled the function returns ctx.Err().
// After exhausting attempts the last retryable response (or transport error)
// is returned so the caller can classify it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt >= maxAttempts {
				return nil, err
			}
			if err := sleep(ctx, backoff(attempt, "")); err != nil {
				return nil, err
			}
			continue
		}

		if !Retryable(resp.StatusCode) || attempt >= maxAttempts {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt-1))) * RetryBaseDelay
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		d = time.Duration(secs) * time.Second
	}
	return min(d, MaxRetryDelay)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
