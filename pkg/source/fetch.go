package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerscape/pkg/arch"
	errs "github.com/matzehuels/layerscape/pkg/errors"
	"github.com/matzehuels/layerscape/pkg/httputil"
	"github.com/matzehuels/layerscape/pkg/observability"
)

const (
	httpTimeout = 10 * time.Second

	// maxPayload bounds how much of a response body is read.
	maxPayload = 16 << 20
)

// Fetcher downloads architecture payloads from a model description service.
type Fetcher struct {
	http     *http.Client
	headers  map[string]string
	attempts int
	delay    time.Duration
	logger   *log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the HTTP client (default: 10s timeout).
func WithHTTPClient(c *http.Client) FetcherOption { return func(f *Fetcher) { f.http = c } }

// WithHeaders sets headers sent with every request.
func WithHeaders(h map[string]string) FetcherOption { return func(f *Fetcher) { f.headers = h } }

// WithRetry sets the attempt count and initial backoff delay.
func WithRetry(attempts int, delay time.Duration) FetcherOption {
	return func(f *Fetcher) { f.attempts, f.delay = attempts, delay }
}

// WithLogger routes fetch logging to l.
func WithLogger(l *log.Logger) FetcherOption { return func(f *Fetcher) { f.logger = l } }

// NewFetcher returns a fetcher that retries transient failures 3 times
// starting at a 1s delay.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		http:     &http.Client{Timeout: httpTimeout},
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = log.New(io.Discard)
	}
	return f
}

// Fetch downloads and decodes the architecture at endpoint. The result's
// Source is set to endpoint.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string) (*arch.Architecture, error) {
	data, err := f.FetchBytes(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	a, err := arch.Decode(data, arch.FormatAuto)
	if err != nil {
		return nil, err
	}
	if a.Source == "" {
		a.Source = endpoint
	}
	return a, nil
}

// FetchBytes downloads the raw payload at endpoint, retrying transient
// failures.
func (f *Fetcher) FetchBytes(ctx context.Context, endpoint string) ([]byte, error) {
	if err := errs.ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}

	var body []byte
	err := httputil.Retry(ctx, f.attempts, f.delay, func() error {
		data, err := f.get(ctx, endpoint)
		if err != nil {
			if httputil.IsRetryable(err) {
				f.logger.Debug("fetch failed, retrying", "url", endpoint, "err", err)
			}
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		var re *httputil.RetryableError
		if errors.As(err, &re) {
			err = re.Err
		}
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "build request for %s", endpoint)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := f.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, errs.Wrap(errs.ErrCodeTimeout, err, "GET %s", endpoint)
		}
		return nil, &httputil.RetryableError{Err: errs.Wrap(errs.ErrCodeNetwork, err, "GET %s", endpoint)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload+1))
	if err != nil {
		return nil, &httputil.RetryableError{Err: errs.Wrap(errs.ErrCodeNetwork, err, "read body of %s", endpoint)}
	}
	if len(data) > maxPayload {
		return nil, errs.New(errs.ErrCodeParse, "payload from %s exceeds %d bytes", endpoint, maxPayload)
	}
	return data, nil
}

// Result is the outcome of an asynchronous fetch.
type Result struct {
	Architecture *arch.Architecture
	Err          error
}

// FetchAsync starts a fetch and returns a channel that receives exactly one
// Result and is then closed.
func (f *Fetcher) FetchAsync(ctx context.Context, endpoint string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		a, err := f.Fetch(ctx, endpoint)
		ch <- Result{Architecture: a, Err: err}
	}()
	return ch
}

// Ping checks that the service behind endpoint answers at all. Any HTTP
// response below 500 counts as reachable; there is no retry.
func (f *Fetcher) Ping(ctx context.Context, endpoint string) error {
	if err := errs.ValidateEndpoint(endpoint); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "build request for %s", endpoint)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errs.Wrap(errs.ErrCodeTimeout, err, "ping %s", endpoint)
		}
		return errs.Wrap(errs.ErrCodeNetwork, err, "ping %s", endpoint)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return errs.New(errs.ErrCodeNetwork, "ping %s: status %d", endpoint, resp.StatusCode)
	}
	return nil
}

// IsURL reports whether ref looks like an http(s) endpoint rather than a
// file path.
func IsURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load resolves ref to an architecture: a configured model name, an http(s)
// URL, "-" for r, or a file path, in that order.
func Load(ctx context.Context, f *Fetcher, models map[string]string, ref string, r io.Reader) (*arch.Architecture, error) {
	if endpoint, ok := models[ref]; ok {
		a, err := f.Fetch(ctx, endpoint)
		if err == nil && a.Name == "" {
			a.Name = ref
		}
		return a, err
	}
	switch {
	case IsURL(ref):
		return f.Fetch(ctx, ref)
	case ref == "-":
		if r == nil {
			return nil, errs.New(errs.ErrCodeInvalidInput, "no input stream")
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeParse, err, "read input")
		}
		return arch.Decode(bytes.TrimSpace(data), arch.FormatAuto)
	default:
		return arch.ReadFile(ref)
	}
}
