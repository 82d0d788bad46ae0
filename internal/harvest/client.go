package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mirkit/stemscan/pkg/logger"
)

// fetch GETs the listing URL with bounded retries. Transport errors,
// 429 and 5xx responses retry with exponential backoff; a Retry-After
// header on the response overrides the computed delay.
func (h *Harvester) fetch(ctx context.Context) (io.ReadCloser, error) {
	url := h.cfg.ListingURL

	for attempt := 0; attempt < h.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: GET %s: %v", ErrFetch, url, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: building request for %s: %v", ErrFetch, url, err)
		}
		if h.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", h.cfg.UserAgent)
		}

		resp, doErr := h.client.Do(req)
		retryAfter, retry := shouldRetry(resp, doErr)
		if !retry {
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: GET %s: status %d", ErrFetch, url, resp.StatusCode)
			}
			return resp.Body, nil
		}

		if doErr != nil {
			logger.Warnf("Retry %d/%d for %s: %v", attempt+1, h.cfg.MaxRetries, url, doErr)
		} else {
			logger.Warnf("Retry %d/%d for %s: status %d", attempt+1, h.cfg.MaxRetries, url, resp.StatusCode)
			resp.Body.Close()
		}

		if attempt == h.cfg.MaxRetries-1 {
			if doErr != nil {
				return nil, fmt.Errorf("%w: GET %s after %d attempts: %v", ErrFetch, url, h.cfg.MaxRetries, doErr)
			}
			return nil, fmt.Errorf("%w: GET %s after %d attempts: status %d", ErrFetch, url, h.cfg.MaxRetries, resp.StatusCode)
		}

		backoff := h.cfg.RetryBackoff * time.Duration(1<<uint(attempt))
		if retryAfter > 0 {
			backoff = retryAfter
		}
		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, fmt.Errorf("%w: GET %s: %v", ErrFetch, url, err)
		}
	}

	return nil, fmt.Errorf("%w: GET %s: retries exhausted", ErrFetch, url)
}

// shouldRetry reports whether the attempt is worth repeating and, for
// rate-limited responses, how long the server asked us to wait.
func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return parseRetryAfter(resp), true
	}
	return 0, false
}

// parseRetryAfter reads the Retry-After header, accepting either a
// second count or an HTTP date. Returns 0 when absent or malformed.
func parseRetryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
