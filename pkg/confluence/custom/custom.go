// Package custom is the escape hatch for Confluence endpoints the content
// grammars do not model. A Query is reached from any verb's initial state
// via CustomEndpoint and can be executed directly.
package custom

import (
	"context"
	"net/http"

	"bardo/pkg/confluence/internal/pipeline"
)

type Query struct {
	p *pipeline.Pending
}

// From wraps a pending request. It is used by the verb grammars.
func From(p *pipeline.Pending) Query {
	return Query{p: p}
}

// SetHeader sets one header on the request.
func (q Query) SetHeader(name, value string) (Query, error) {
	p, err := q.p.SetHeader(name, value)
	return Query{p: p}, err
}

func (q Query) Send(ctx context.Context) (*http.Response, error) {
	return q.p.Send(ctx)
}
