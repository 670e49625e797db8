package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/athorburn/concordia/internal/cache"
	"github.com/athorburn/concordia/internal/util"
	"github.com/athorburn/concordia/internal/worker"
)

// ErrRobotsDisallowed is returned when a host's robots.txt forbids the
// requested path for our user agent
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// fetchSleepFunc is overridable for fast tests
var fetchSleepFunc = time.Sleep

const maxFetchAttempts = 3

// Fetcher downloads source pages with politeness controls: robots.txt
// checks, per-host rate limiting, a fetch cache, and bounded retries with
// exponential backoff.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// Options configures a Fetcher. Robots, Limiter, and Cache are optional;
// leaving one nil disables that control.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Robots       *util.RobotsChecker
	Limiter      *worker.Limiter
	Cache        cache.Cache
	CacheTTL     time.Duration
	Logger       *zap.Logger
}

// New creates a Fetcher
func New(opts Options) *Fetcher {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBodyBytes,
		robots:    opts.Robots,
		limiter:   opts.Limiter,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		logger:    opts.Logger,
	}
}

// StatusError reports a non-2xx response. Callers use Retryable to decide
// whether trying an alternate URL makes sense.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, e.Status)
}

// Retryable reports whether the status indicates a transient condition
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Fetch retrieves the body at rawURL, honoring robots.txt, the per-host
// rate limit, and the fetch cache. The cache stores raw bodies keyed by
// URL and survives across resumed runs.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.cache != nil {
		if body, ok := f.cache.Get(cache.Key(rawURL)); ok {
			f.logger.Debug("fetch cache hit", zap.String("url", rawURL))
			return body, nil
		}
	}

	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
		if f.limiter != nil {
			if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}
	} else if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	body, err := f.doRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Set(cache.Key(rawURL), body, f.cacheTTL); err != nil {
			f.logger.Warn("fetch cache write failed", zap.String("url", rawURL), zap.Error(err))
		}
	}
	return body, nil
}

// FetchWithRetry wraps Fetch with bounded retries and exponential backoff.
// Only transport errors and transient statuses (429, 5xx) are retried;
// 4xx failures and robots denials surface immediately.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		body, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.Is(err, ErrRobotsDisallowed) {
			return nil, err
		}
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt < maxFetchAttempts {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			f.logger.Debug("fetch retry",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			fetchSleepFunc(backoff)
		}
	}
	return nil, fmt.Errorf("fetch %s after %d attempts: %w", rawURL, maxFetchAttempts, lastErr)
}

func (f *Fetcher) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
