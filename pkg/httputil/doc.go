// Package httputil provides the HTTP plumbing shared by architecture
// fetchers.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only for
// failures wrapped in [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Everything else is returned on the first attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp.StatusCode)
//	})
//
// # Status classification
//
// [CheckStatus] maps an HTTP status onto the structured error codes of
// [github.com/matzehuels/layerscape/pkg/errors], marking the transient
// ones retryable.
package httputil
