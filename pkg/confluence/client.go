package confluence

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"go.opentelemetry.io/otel"
	"golang.org/x/net/publicsuffix"

	"bardo/pkg/confluence/content/get"
	"bardo/pkg/confluence/content/post"
	"bardo/pkg/confluence/content/put"
	"bardo/pkg/confluence/internal/pipeline"
	"bardo/pkg/confluence/internal/throttle"
	"bardo/pkg/logger"
	"bardo/pkg/version"
)

const instrumentationName = "bardo/pkg/confluence"

// Client is the entry point of every builder chain. It holds the base host
// (for example https://wiki.example.com/rest/api) and the shared transport.
// A Client is safe for concurrent use; the builder states it returns are not.
type Client struct {
	host      *url.URL
	transport *pipeline.Transport
	headers   http.Header
}

// New builds a Client for host with its own cookie-keeping *http.Client.
// No request is made until a chain is executed.
func New(host string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return NewWithClient(&http.Client{Jar: jar}, host, opts...)
}

// NewWithClient builds a Client around an already configured *http.Client,
// so several Clients can share one connection pool and cookie jar. hc itself
// is never modified.
func NewWithClient(hc *http.Client, host string, opts ...Option) (*Client, error) {
	if hc == nil {
		return nil, errors.New("http client must not be nil")
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("failed to parse host: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("failed to parse host: %q is not an absolute URL", host)
	}

	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	log := o.logger
	if log == nil {
		log = logger.Discard()
	}

	cp := *hc
	if o.timeout != nil {
		cp.Timeout = *o.timeout
	}
	if o.throttle != nil {
		rt, err := throttle.NewRoundTripper(*o.throttle, log, cp.Transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		cp.Transport = rt
	}

	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Client{
		host: u,
		transport: &pipeline.Transport{
			HTTP:   &cp,
			Log:    log,
			Tracer: tp.Tracer(instrumentationName),
		},
		headers: defaultHeaders(o),
	}, nil
}

func defaultHeaders(o options) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", version.Product)
	h.Set("Accept", "application/json")
	if o.userAgent != "" {
		h.Set("User-Agent", o.userAgent)
	}
	for k, v := range o.headers {
		h[k] = append([]string(nil), v...)
	}
	return h
}

// Host returns the base URL requests are built against.
func (c *Client) Host() string {
	return c.host.String()
}

// HTTPClient returns the underlying transport handle, for sharing with
// NewWithClient.
func (c *Client) HTTPClient() *http.Client {
	return c.transport.HTTP
}

func (c *Client) pending(method string) *pipeline.Pending {
	return pipeline.New(c.transport, method, c.host.String(), c.headers)
}

// Get starts a GET chain.
func (c *Client) Get() get.Query {
	return get.From(c.pending(http.MethodGet))
}

// Post starts a POST chain with body encoded as JSON. An encoding failure is
// held by the chain and reported by Execute.
func (c *Client) Post(body any) post.Query {
	return post.From(c.pending(http.MethodPost).Body(body))
}

// Put starts a PUT chain with body encoded as JSON.
func (c *Client) Put(body any) put.Query {
	return put.From(c.pending(http.MethodPut).Body(body))
}
