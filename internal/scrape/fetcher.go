// Package scrape fetches venue and event pages attached to a generation
// brief and extracts the bits worth showing to the model: title,
// description, location and date hints.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/observability"
)

const userAgent = "Mozilla/5.0 (compatible; FashionOSBot/1.0; +https://fashionos.app)"

// hostLimiter hands out one token-bucket limiter per host so a brief
// with several URLs on the same venue site stays polite.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newHostLimiter(rps float64, burst int) *hostLimiter {
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *hostLimiter) wait(ctx context.Context, host string) error {
	l.mu.Lock()
	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[host] = lim
	}
	l.mu.Unlock()
	return lim.Wait(ctx)
}

// Fetcher retrieves pages with per-host rate limiting, bounded body
// reads and retries on transient failures.
type Fetcher struct {
	client       *http.Client
	limiter      *hostLimiter
	maxBodyBytes int64
	retries      int
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// FetcherConfig tunes a Fetcher. Zero values get sensible defaults.
type FetcherConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	RatePerHost  float64
	RateBurst    int
	Retries      int
}

// NewFetcher creates a fetcher. metrics may be nil.
func NewFetcher(cfg FetcherConfig, logger *zap.Logger, metrics *observability.Metrics) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 2 << 20
	}
	if cfg.RatePerHost <= 0 {
		cfg.RatePerHost = 1.5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 2
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		limiter:      newHostLimiter(cfg.RatePerHost, cfg.RateBurst),
		maxBodyBytes: cfg.MaxBodyBytes,
		retries:      cfg.Retries,
		logger:       logger,
		metrics:      metrics,
	}
}

// Fetch retrieves rawURL, retrying transient statuses and network
// errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (body []byte, err error) {
	defer func() {
		if f.metrics == nil {
			return
		}
		if err != nil {
			f.metrics.RecordScrapeFetch("error")
			return
		}
		f.metrics.RecordScrapeFetch("ok")
	}()

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	host := parsed.Hostname()

	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if err := f.limiter.wait(ctx, host); err != nil {
			return nil, err
		}

		body, status, err := f.do(ctx, rawURL)
		if err == nil && status < 400 {
			return body, nil
		}
		if err == nil {
			lastErr = fmt.Errorf("fetch %q: status %d", rawURL, status)
			if !retryableStatus(status) {
				return nil, lastErr
			}
		} else {
			lastErr = err
			if !transient(err) {
				return nil, err
			}
		}

		if attempt < f.retries {
			f.logger.Debug("fetch retry",
				zap.String("host", host),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(250*(1<<attempt)) * time.Millisecond):
			}
		}
	}
	return nil, lastErr
}

func (f *Fetcher) do(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

func transient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
