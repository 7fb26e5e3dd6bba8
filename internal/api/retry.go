package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/yairfalse/apidrift/internal/errors"
)

// maxRateLimitRetries is how many times a 429 is retried before giving up
const maxRateLimitRetries = 1

var errTooManyRequests = stderrors.New("too many requests")

// retryAfterBackOff waits for whatever the last 429 asked for
type retryAfterBackOff struct {
	fallback time.Duration
	next     time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration { return b.next }

func (b *retryAfterBackOff) Reset() { b.next = b.fallback }

func (b *retryAfterBackOff) observe(header string) {
	b.next = parseRetryAfter(header, b.fallback, time.Now())
}

// parseRetryAfter reads a Retry-After value in either delta-seconds or
// HTTP-date form. Anything else yields fallback.
func parseRetryAfter(value string, fallback time.Duration, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return fallback
}

// send runs r, retrying once on 429, and returns the raw success body
func (c *Client) send(ctx context.Context, r *request) ([]byte, error) {
	ra := &retryAfterBackOff{fallback: c.retryAfter}

	var body []byte
	operation := func() error {
		status, header, b, err := c.roundTrip(ctx, r)
		if err != nil {
			return backoff.Permanent(err)
		}
		if status == http.StatusTooManyRequests {
			ra.observe(header.Get("Retry-After"))
			return errTooManyRequests
		}
		if err := c.checkStatus(r, status, b); err != nil {
			return backoff.Permanent(err)
		}
		body = b
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(ra, maxRateLimitRetries), ctx)
	err := backoff.RetryNotify(operation, policy, func(_ error, wait time.Duration) {
		c.log.WithFields(map[string]interface{}{
			"path": r.path,
			"wait": wait.String(),
		}).Warn("rate limited, retrying")
	})
	if stderrors.Is(err, errTooManyRequests) {
		return nil, errors.RateLimitError()
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}
