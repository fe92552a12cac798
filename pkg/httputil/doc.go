// Package httputil provides retry helpers for package registry clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only when the
// returned error is wrapped with [RetryableError]. Registry clients wrap
// transient failures (connection errors, 5xx responses) and leave
// permanent ones (404, 4xx) unwrapped so they fail immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// The delay doubles after every failed attempt, up to [MaxDelay]. A server's
// Retry-After, parsed with [ParseRetryAfter] and attached with [RetryAfter],
// replaces the backoff for the next attempt. Cancelling ctx stops the wait
// and returns ctx.Err().
//
// Response caching lives in [github.com/matzehuels/conet/pkg/cache].
package httputil
