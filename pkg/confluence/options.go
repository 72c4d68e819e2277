package confluence

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http/httpguts"

	"bardo/pkg/confluence/internal/throttle"
	"bardo/pkg/logger"
)

// Option configures a Client built by New or NewWithClient.
type Option func(*options) error

type options struct {
	logger         *logger.Logger
	timeout        *time.Duration
	throttle       *throttle.Config
	headers        http.Header
	userAgent      string
	tracerProvider trace.TracerProvider
}

// WithLogger routes request debug logging to log.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) error {
		if log == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = log
		return nil
	}
}

// WithTimeout bounds every request made through the client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		o.timeout = &d
		return nil
	}
}

// WithThrottle limits outbound requests to rps with the given burst.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithHeader pre-sets a header on every builder the client creates.
func WithHeader(name, value string) Option {
	return func(o *options) error {
		if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
			return &HeaderError{Name: name, Err: ErrHeader}
		}
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		o.headers.Set(name, value)
		return nil
	}
}

// WithBasicAuth pre-sets an Authorization header for user and API token.
func WithBasicAuth(user, token string) Option {
	creds := base64.StdEncoding.EncodeToString([]byte(user + ":" + token))
	return WithHeader("Authorization", "Basic "+creds)
}

// WithUserAgent overrides the default User-Agent.
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		if ua == "" {
			return errors.New("user agent must not be empty")
		}
		o.userAgent = ua
		return nil
	}
}

// WithTracerProvider selects the provider request spans are recorded with.
// The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) error {
		if tp == nil {
			return errors.New("tracer provider must not be nil")
		}
		o.tracerProvider = tp
		return nil
	}
}
