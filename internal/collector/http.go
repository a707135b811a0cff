package collector

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultRateLimit   = 5 // requests per second
	maxRetries         = 3
	retryDelay         = 500 * time.Millisecond
	retryDelay429      = 5 * time.Second
	userAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// httpSource is the paced, retrying HTTP client shared by remote fetchers.
type httpSource struct {
	client  *http.Client
	limiter *rate.Limiter
	headers map[string]string
}

func newHTTPSource(proxyURL string, requestsPerSecond float64) *httpSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = defaultRateLimit
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &httpSource{
		client: &http.Client{
			Timeout:   defaultHTTPTimeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		headers: map[string]string{"User-Agent": userAgent},
	}
}

// get fetches u, waiting on the rate limiter before each attempt and
// retrying transport errors, 429 and 5xx responses.
func (h *httpSource) get(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	var lastStatus int
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := retryDelay * time.Duration(attempt)
			if lastStatus == http.StatusTooManyRequests {
				backoff = retryDelay429
			}
			log.Printf("[WARN] retry %d/%d %s in %v: %v", attempt, maxRetries-1, u, backoff, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range h.headers {
			req.Header.Set(k, v)
		}

		resp, err := h.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read body: %w", err)
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return body, nil
		}
		lastStatus = resp.StatusCode
		lastErr = fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 200))
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("all %d attempts failed: %w", maxRetries, lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
