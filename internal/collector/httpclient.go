package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"InsiderWatch/internal/observability"
)

// HTTPStatusError reports a non-200 upstream response.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.StatusCode, e.Body)
}

// httpDoer performs rate-limited GETs with exponential backoff on transport
// errors and 5xx/429 responses.
type httpDoer struct {
	client         *http.Client
	limiter        *rate.Limiter
	retryInterval  time.Duration
	maxElapsedTime time.Duration
}

func newHTTPDoer(proxyURL string, requestsPerSec float64) *httpDoer {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if requestsPerSec <= 0 {
		requestsPerSec = 2
	}
	return &httpDoer{
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter:        rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		retryInterval:  500 * time.Millisecond,
		maxElapsedTime: 20 * time.Second,
	}
}

// get fetches endpoint and returns the body of a 200 response.
func (d *httpDoer) get(ctx context.Context, source, endpoint string, headers map[string]string) ([]byte, error) {
	var body []byte
	start := time.Now()
	operation := func() error {
		if err := d.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := d.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 256)}
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}
		body = data
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.retryInterval
	b.MaxElapsedTime = d.maxElapsedTime
	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	observability.RecordUpstreamFetch(source, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
