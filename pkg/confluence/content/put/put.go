// Package put is the PUT grammar of the content endpoints: content/{id}.
package put

import (
	"context"
	"net/http"

	"bardo/pkg/confluence/custom"
	"bardo/pkg/confluence/internal/pipeline"
)

// Query is the initial PUT state. Its JSON body is already set.
type Query struct{ p *pipeline.Pending }

// From wraps a pending PUT request.
func From(p *pipeline.Pending) Query { return Query{p: p} }

func (q Query) Content() Content { return Content{q.p.Segment("content")} }

func (q Query) CustomEndpoint(path string) custom.Query { return custom.From(q.p.PathParam("custom endpoint", path)) }

func (q Query) SetHeader(name, value string) (Query, error) {
	p, err := q.p.SetHeader(name, value)
	return Query{p}, err
}

type Content struct{ p *pipeline.Pending }

func (c Content) ContentID(id string) ID { return ID{c.p.PathParam("content id", id)} }

func (c Content) Send(ctx context.Context) (*http.Response, error) { return c.p.Send(ctx) }

// ID updates one piece of content.
type ID struct{ p *pipeline.Pending }

func (i ID) Send(ctx context.Context) (*http.Response, error) { return i.p.Send(ctx) }
