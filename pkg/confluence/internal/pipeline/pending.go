// Package pipeline holds the request state shared by every builder state of
// the content grammars: a live *http.Request or the error that stopped its
// construction, never both.
package pipeline

import (
	"bytes"
	"io"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
	"golang.org/x/net/http/httpguts"
)

// Pending is the request under construction. Every transition moves it: the
// receiver is left holding ErrConsumed and a new Pending carries the request
// forward, so a builder state can be used exactly once.
type Pending struct {
	req    *http.Request
	err    error
	staged *string
	t      *Transport
}

// New starts a request for method against host with a copy of header.
func New(t *Transport, method, host string, header http.Header) *Pending {
	req, err := http.NewRequest(method, host, nil)
	if err != nil {
		return Fail(t, &ConstructionError{Op: "parse host", Err: err})
	}
	req.Header = header.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	return &Pending{req: req, t: t}
}

// Fail returns a Pending that carries err from the start.
func Fail(t *Transport, err error) *Pending {
	return &Pending{err: err, t: t}
}

// Err reports the sticky construction error, if any.
func (p *Pending) Err() error {
	if p == nil {
		return errUninitialized
	}
	return p.err
}

// Request exposes the request built so far. It is nil once an error is held.
func (p *Pending) Request() *http.Request {
	if p == nil {
		return nil
	}
	return p.req
}

func (p *Pending) move() *Pending {
	if p == nil {
		return &Pending{err: &ConstructionError{Op: "move", Err: errUninitialized}}
	}
	next := &Pending{req: p.req, err: p.err, staged: p.staged, t: p.t}
	p.req, p.staged, p.err = nil, nil, ErrConsumed
	return next
}

func (p *Pending) fail(op string, err error) *Pending {
	p.req, p.staged = nil, nil
	p.err = &ConstructionError{Op: op, Err: err}
	return p
}

// Segment appends a fixed path segment.
func (p *Pending) Segment(segment string) *Pending {
	next := p.move()
	if next.err != nil {
		return next
	}
	u, err := URLJoin(next.req.URL, segment)
	if err != nil {
		return next.fail("join "+segment, err)
	}
	next.req.URL = u
	return next
}

// PathParam appends a caller supplied value, such as a content id, as a path
// segment.
func (p *Pending) PathParam(name, value string) *Pending {
	next := p.move()
	if next.err != nil {
		return next
	}
	if value == "" {
		return next.fail(name, errMissingValue)
	}
	u, err := URLJoin(next.req.URL, value)
	if err != nil {
		return next.fail(name, err)
	}
	next.req.URL = u
	return next
}

// Stage records a query value whose key is supplied by the following Resolve.
func (p *Pending) Stage(value string) *Pending {
	next := p.move()
	if next.err != nil {
		return next
	}
	next.staged = &value
	return next
}

// Resolve appends key=<staged value> to the query string, starting it with
// "?" or continuing it with "&".
func (p *Pending) Resolve(key string) *Pending {
	next := p.move()
	if next.err != nil {
		return next
	}
	if next.staged == nil {
		return next.fail(key, errMissingParameter)
	}
	value := *next.staged
	next.staged = nil
	if value == "" {
		return next.fail(key, errMissingValue)
	}

	sep := "?"
	if next.req.URL.RawQuery != "" || next.req.URL.ForceQuery {
		sep = "&"
	}
	u, err := url.Parse(next.req.URL.String() + sep + key + "=" + escapeInvalid(value))
	if err != nil {
		return next.fail(key, err)
	}
	next.req.URL = u
	return next
}

// Query is Stage followed by Resolve.
func (p *Pending) Query(key, value string) *Pending {
	return p.Stage(value).Resolve(key)
}

// Body replaces the payload with the JSON encoding of v.
func (p *Pending) Body(v any) *Pending {
	next := p.move()
	if next.err != nil {
		return next
	}
	data, err := json.Marshal(v)
	if err != nil {
		return next.fail("unable to serialize body", err)
	}
	setBody(next.req, data)
	return next
}

// Encoder produces a request payload together with its content type.
type Encoder interface {
	Encode() ([]byte, string, error)
}

// Multipart replaces the JSON payload with the encoded form and marks the
// request with the token header Confluence requires for attachment uploads.
func (p *Pending) Multipart(form Encoder) *Pending {
	next := p.move()
	if next.err != nil {
		return next
	}
	if form == nil {
		return next.fail("attachment form", errMissingValue)
	}
	data, contentType, err := form.Encode()
	if err != nil {
		return next.fail("attachment form", err)
	}
	setBody(next.req, data)
	next.req.Header.Set("Content-Type", contentType)
	next.req.Header.Set("X-Atlassian-Token", "nocheck")
	return next
}

// SetHeader sets one header. An invalid name or value is reported at once and
// leaves the request untouched; a state already holding an error returns that
// error unchanged.
func (p *Pending) SetHeader(name, value string) (*Pending, error) {
	next := p.move()
	if next.err != nil {
		return next, next.err
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return next, &HeaderError{Name: name, Err: errInvalidName}
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return next, &HeaderError{Name: name, Err: errInvalidValue}
	}
	next.req.Header.Set(name, value)
	return next, nil
}

func setBody(req *http.Request, data []byte) {
	req.ContentLength = int64(len(data))
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}
