// Package throttle rate-limits outbound Confluence calls with a token bucket.
package throttle

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"bardo/pkg/logger"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
)

// Config holds the requests-per-second and burst of the bucket.
type Config struct {
	RPS   int
	Burst int
}

type roundTripper struct {
	limiter *rate.Limiter
	cfg     Config
	next    http.RoundTripper
	log     *logger.Logger
}

// NewRoundTripper wraps next so that requests block until a token is
// available or the request context ends. There is no retry.
func NewRoundTripper(cfg Config, log *logger.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if cfg.RPS <= 0 || cfg.Burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", cfg.RPS, cfg.Burst, ErrMustNotBeZero)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if log == nil {
		log = logger.Discard()
	}

	return &roundTripper{
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		cfg:     cfg,
		next:    next,
		log:     log,
	}, nil
}

func (t *roundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.limiter.Tokens() < 1 {
		t.log.Debug("throttle: tokens exhausted (rate %d, burst %d), waiting before %s %s", t.cfg.RPS, t.cfg.Burst, r.Method, r.URL.Path)
	}

	start := time.Now()
	if err := t.limiter.Wait(r.Context()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		t.log.Debug("throttle: waited %s", waited)
	}

	return t.next.RoundTrip(r)
}
