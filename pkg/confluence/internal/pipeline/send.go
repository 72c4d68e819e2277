package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bardo/pkg/logger"
)

const instrumentationName = "bardo/pkg/confluence"

// Transport is the shared, long lived side of every builder chain. It is
// only read by builder states; the *http.Client is safe for concurrent use.
type Transport struct {
	HTTP   *http.Client
	Log    *logger.Logger
	Tracer trace.Tracer
}

func (t *Transport) httpClient() *http.Client {
	if t == nil || t.HTTP == nil {
		return http.DefaultClient
	}
	return t.HTTP
}

func (t *Transport) logger() *logger.Logger {
	if t == nil || t.Log == nil {
		return logger.Discard()
	}
	return t.Log
}

func (t *Transport) tracer() trace.Tracer {
	if t == nil || t.Tracer == nil {
		return otel.Tracer(instrumentationName)
	}
	return t.Tracer
}

// Send consumes the state and issues the request. A construction error is
// returned without touching the network; a round trip failure is wrapped in
// ErrTransport. The response status is never treated as an error.
func (p *Pending) Send(ctx context.Context) (*http.Response, error) {
	next := p.move()
	if next.err != nil {
		return nil, next.err
	}

	t := next.t
	log := t.logger()
	req := next.req

	ctx, span := t.tracer().Start(ctx, "confluence "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
		),
	)
	defer span.End()

	traceID := traceIDOf(span)

	start := time.Now()
	resp, err := t.httpClient().Do(req.WithContext(ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("[%s] %s %s failed after %s: %v", traceID, req.Method, req.URL.Redacted(), time.Since(start), err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	log.Debug("[%s] %s %s -> %d (%s)", traceID, req.Method, req.URL.Redacted(), resp.StatusCode, time.Since(start))
	return resp, nil
}

// traceIDOf returns the span's trace ID, or a fresh uuid when no tracer
// provider is installed and the span is a no-op.
func traceIDOf(span trace.Span) string {
	if id := span.SpanContext().TraceID(); id.IsValid() {
		return id.String()
	}
	return uuid.New().String()
}
