package confluence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
)

// Executor is any builder state that can be sent.
type Executor interface {
	Send(ctx context.Context) (*http.Response, error)
}

// Response is the outcome of Execute. Data is nil when the body was empty,
// was JSON null or did not decode into T; that is not an error.
type Response[T any] struct {
	Header     http.Header
	StatusCode int
	Data       *T
	Raw        []byte
}

// Execute sends the request built by e and decodes the JSON body into T.
//
// A construction error held by e is returned without any network call.
// Transport failures are returned wrapped in ErrTransport. The status code is
// never an error; callers inspect StatusCode themselves.
func Execute[T any](ctx context.Context, e Executor) (*Response[T], error) {
	if e == nil {
		return nil, &ConstructionError{Op: "execute", Err: fmt.Errorf("nil executor")}
	}

	resp, err := e.Send(ctx)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &Response[T]{
		Header:     resp.Header,
		StatusCode: resp.StatusCode,
	}

	out.Raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("%w: failed to read response body: %w", ErrTransport, err)
	}

	if bytes.Equal(bytes.TrimSpace(out.Raw), []byte("null")) {
		return out, nil
	}
	var data T
	if err := json.Unmarshal(out.Raw, &data); err == nil {
		out.Data = &data
	}

	return out, nil
}
