// Package post is the POST grammar of the content endpoints:
//
//	content
//	content/{id}/child/attachment            (multipart)
//	content/{id}/child/attachment/{id}/data  (multipart)
package post

import (
	"context"
	"net/http"

	"bardo/pkg/confluence/custom"
	"bardo/pkg/confluence/form"
	"bardo/pkg/confluence/internal/pipeline"
)

// Query is the initial POST state. Its JSON body is already set.
type Query struct{ p *pipeline.Pending }

// From wraps a pending POST request.
func From(p *pipeline.Pending) Query { return Query{p: p} }

func (q Query) Content() Content { return Content{q.p.Segment("content")} }

// CustomEndpoint appends path verbatim and leaves the grammar.
func (q Query) CustomEndpoint(path string) custom.Query { return custom.From(q.p.PathParam("custom endpoint", path)) }

func (q Query) SetHeader(name, value string) (Query, error) {
	p, err := q.p.SetHeader(name, value)
	return Query{p}, err
}

// Content creates a page or blog post from the JSON body.
type Content struct{ p *pipeline.Pending }

func (c Content) ContentID(id string) ContentID {
	return ContentID{c.p.PathParam("content id", id)}
}

func (c Content) Send(ctx context.Context) (*http.Response, error) { return c.p.Send(ctx) }

type ContentID struct{ p *pipeline.Pending }

func (c ContentID) Child() Child { return Child{c.p.Segment("child")} }

type Child struct{ p *pipeline.Pending }

// Attachment swaps the JSON body for f and targets child/attachment.
func (c Child) Attachment(f *form.Form) Attachment {
	var enc pipeline.Encoder
	if f != nil {
		enc = f
	}
	return Attachment{c.p.Segment("attachment").Multipart(enc)}
}

// Attachment uploads new attachments.
type Attachment struct{ p *pipeline.Pending }

func (a Attachment) AttachmentID(id string) AttachmentID {
	return AttachmentID{a.p.PathParam("attachment id", id)}
}

func (a Attachment) Send(ctx context.Context) (*http.Response, error) { return a.p.Send(ctx) }

type AttachmentID struct{ p *pipeline.Pending }

func (a AttachmentID) Data() Data { return Data{a.p.Segment("data")} }

// Data replaces the bytes of an existing attachment.
type Data struct{ p *pipeline.Pending }

func (d Data) Send(ctx context.Context) (*http.Response, error) { return d.p.Send(ctx) }
