// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across components.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// retryable responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 5

// NoRetry makes DoWithRetry send the request once, for callers that run
// their own retry loop.
const NoRetry = -1

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests), 502, 503 or 504 with exponential backoff. The delay starts at
// RetryBaseDelay and doubles each attempt.
//
// When maxRetries is 0 the default (5) is used; a negative value disables
// retries. On each retryable response
// the body is drained and closed before sleeping, and request bodies are
// replayed through req.GetBody. If the context is cancelled during a
// backoff wait the function returns ctx.Err(). After exhausting retries
// the last response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	switch {
	case maxRetries < 0:
		maxRetries = 0
	case maxRetries == 0:
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) {
			return resp, nil
		}

		// Exhausted retries: return the last response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		logrus.WithFields(logrus.Fields{
			"status":  resp.StatusCode,
			"attempt": attempt + 1,
			"backoff": backoff,
		}).Debug("retryable response, backing off")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// RetryClient adapts DoWithRetry to the Do(*http.Request) shape that SDK
// clients accept.
type RetryClient struct {
	Client     *http.Client
	MaxRetries int
}

// Do sends req, retrying on rate limiting.
func (c *RetryClient) Do(req *http.Request) (*http.Response, error) {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	return DoWithRetry(req.Context(), client, req, c.MaxRetries)
}
