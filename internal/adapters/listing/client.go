// internal/adapters/listing/client.go
package listing

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client reads one listing endpoint.
type Client struct {
	endpoint string
	label    string
	hc       *http.Client
	key      string
	rl       *rate.Limiter
}

// New builds a client for endpoint. key is optional and sent as X-API-Key.
func New(endpoint, key string, rps int) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("listing endpoint %q is not an absolute URL", endpoint)
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		endpoint: endpoint,
		label:    u.Host,
		hc:       &http.Client{Timeout: 20 * time.Second},
		key:      key,
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (c *Client) Endpoint() string { return c.endpoint }

// ListHotels returns the "list" array of the endpoint's response. Records
// that do not decode are skipped and logged; the rest are returned.
func (c *Client) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	var out domain.Listing
	if err := c.get(ctx, c.endpoint, &out); err != nil {
		return nil, err
	}
	hs := make([]domain.Hotel, 0, len(out.List))
	for i, raw := range out.List {
		var h domain.Hotel
		if err := json.Unmarshal(raw, &h); err != nil {
			observability.ObserveListingRecord("skipped")
			log.Warn().Err(err).Str("listing", c.label).Int("index", i).Msg("skipping malformed listing record")
			continue
		}
		hs = append(hs, h)
	}
	return hs, nil
}

// ---- Internals ----

var (
	ErrUnauthorized = errors.New("listing: unauthorized")
	ErrForbidden    = errors.New("listing: forbidden")
)

const maxAttempts = 4

// get GETs target and decodes the body into out. Every attempt waits on the
// rate limiter. 429 and transient 5xx are retried with backoff, or after
// Retry-After when the server sends one.
func (c *Client) get(ctx context.Context, target string, out any) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}
		wait, err := c.attempt(ctx, target, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var re *retryableError
		if !errors.As(err, &re) {
			return err
		}
		lastErr = re.err
		if wait == 0 {
			wait = backoff(i)
		}
		if i == maxAttempts-1 || !sleepCtx(ctx, wait) {
			break
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return lastErr
}

// retryableError marks an attempt failure worth repeating.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }

// attempt performs one request. The returned duration is the server's
// Retry-After hint, zero when absent.
func (c *Client) attempt(ctx context.Context, target string, out any) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hotel-booking/1.0")
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("listing", c.label, 0, time.Since(start))
		return 0, &retryableError{err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("listing", c.label, resp.StatusCode, time.Since(start))

	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return 0, fmt.Errorf("decode listing: %w", err)
		}
		return 0, nil
	case code == http.StatusNoContent:
		return 0, nil
	case code == http.StatusNotFound:
		return 0, domain.ErrNotFound
	case code == http.StatusUnauthorized:
		return 0, ErrUnauthorized
	case code == http.StatusForbidden:
		return 0, ErrForbidden
	case code == http.StatusTooManyRequests || code >= 500 && code != http.StatusNotImplemented:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return retryAfter(resp), &retryableError{err: fmt.Errorf("listing %s: status %d", c.label, code)}
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("listing %s: status %d: %s", c.label, code, strings.TrimSpace(string(b)))
	}
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date); 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
