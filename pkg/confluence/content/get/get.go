// Package get is the GET grammar of the content endpoints:
//
//	content
//	content/{id}[?expand=]
//	content/{id}/child?expand=
//	content/{id}/child/attachment[?filename=]
//	content?spaceKey=&title=[&expand=]
//
// Each grammar position is its own type and only offers the transitions that
// are legal from it. Types with a Send method can be executed.
package get

import (
	"context"
	"net/http"

	"bardo/pkg/confluence/custom"
	"bardo/pkg/confluence/internal/pipeline"
)

// Query is the initial GET state.
type Query struct{ p *pipeline.Pending }

// From wraps a pending GET request.
func From(p *pipeline.Pending) Query { return Query{p: p} }

func (q Query) Content() Content { return Content{q.p.Segment("content")} }

// CustomEndpoint appends path verbatim and leaves the grammar.
func (q Query) CustomEndpoint(path string) custom.Query { return custom.From(q.p.PathParam("custom endpoint", path)) }

func (q Query) SetHeader(name, value string) (Query, error) {
	p, err := q.p.SetHeader(name, value)
	return Query{p}, err
}

// Content lists content, or narrows by id or space.
type Content struct{ p *pipeline.Pending }

func (c Content) ContentID(id string) ID { return ID{c.p.PathParam("content id", id)} }

func (c Content) SpaceKey(key string) SpaceKey { return SpaceKey{c.p.Stage(key).Resolve("spaceKey")} }

func (c Content) Send(ctx context.Context) (*http.Response, error) { return c.p.Send(ctx) }

// ID is a single piece of content.
type ID struct{ p *pipeline.Pending }

func (i ID) Child() Child { return Child{i.p.Segment("child")} }

func (i ID) Expand(expand string) Expand { return Expand{i.p.Stage(expand).Resolve("expand")} }

func (i ID) Send(ctx context.Context) (*http.Response, error) { return i.p.Send(ctx) }

type Child struct{ p *pipeline.Pending }

func (c Child) Attachment() Attachment { return Attachment{c.p.Segment("attachment")} }

func (c Child) Expand(expand string) Expand { return Expand{c.p.Stage(expand).Resolve("expand")} }

type Attachment struct{ p *pipeline.Pending }

func (a Attachment) Filename(name string) Filename {
	return Filename{a.p.Stage(name).Resolve("filename")}
}

func (a Attachment) Send(ctx context.Context) (*http.Response, error) { return a.p.Send(ctx) }

type Filename struct{ p *pipeline.Pending }

func (f Filename) Send(ctx context.Context) (*http.Response, error) { return f.p.Send(ctx) }

// SpaceKey can only be narrowed further by title.
type SpaceKey struct{ p *pipeline.Pending }

func (s SpaceKey) Title(title string) Title { return Title{s.p.Stage(title).Resolve("title")} }

type Title struct{ p *pipeline.Pending }

func (t Title) Expand(expand string) Expand { return Expand{t.p.Stage(expand).Resolve("expand")} }

func (t Title) Send(ctx context.Context) (*http.Response, error) { return t.p.Send(ctx) }

type Expand struct{ p *pipeline.Pending }

func (e Expand) Send(ctx context.Context) (*http.Response, error) { return e.p.Send(ctx) }
