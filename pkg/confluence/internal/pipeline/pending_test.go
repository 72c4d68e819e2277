package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bardo/pkg/logger"
)

const host = "https://wiki.example.com/rest/api"

func newPending(t *testing.T, method string) *Pending {
	t.Helper()
	h := make(http.Header)
	h.Set("Accept", "application/json")
	p := New(&Transport{}, method, host, h)
	require.NoError(t, p.Err())
	return p
}

func TestURLJoin(t *testing.T) {
	testCases := []struct {
		base    string
		segment string
		want    string
	}{
		{"https://wiki.example.com/rest/api", "content", "https://wiki.example.com/rest/api/content"},
		{"https://wiki.example.com/rest/api/", "content", "https://wiki.example.com/rest/api/content"},
		{"https://wiki.example.com", "content", "https://wiki.example.com/content"},
		{"https://wiki.example.com/", "content", "https://wiki.example.com/content"},
		{"https://wiki.example.com/rest/api/", "/content", "https://wiki.example.com/rest/api/content"},
		{"https://wiki.example.com/rest/api", "content/42/child", "https://wiki.example.com/rest/api/content/42/child"},
	}

	for _, tc := range testCases {
		t.Run(tc.base+"+"+tc.segment, func(t *testing.T) {
			base, err := url.Parse(tc.base)
			require.NoError(t, err)

			got, err := URLJoin(base, tc.segment)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestURLJoinInvalid(t *testing.T) {
	base, err := url.Parse(host + "/")
	require.NoError(t, err)

	_, err = URLJoin(base, "1:x")
	assert.Error(t, err)
}

func TestURLJoinEscapesInvalidBytes(t *testing.T) {
	base, err := url.Parse(host)
	require.NoError(t, err)

	testCases := []struct {
		segment string
		want    string
	}{
		{"My Page", host + "/My%20Page"},
		{"Café", host + "/Caf%C3%A9"},
		{"bad%zz", host + "/bad%25zz"},
		{"a%2Fb", host + "/a%2Fb"},
		{`x"<y>`, host + "/x%22%3Cy%3E"},
	}
	for _, tc := range testCases {
		t.Run(tc.segment, func(t *testing.T) {
			got, err := URLJoin(base, tc.segment)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestQueryEscapesInvalidBytes(t *testing.T) {
	p := newPending(t, http.MethodGet).
		Segment("content").
		Query("title", "My Page").
		Query("note", "50% {done}").
		Query("keep", "a+b,c%20d")

	require.NoError(t, p.Err())
	assert.Equal(t, host+"/content?title=My%20Page&note=50%25%20%7Bdone%7D&keep=a+b,c%20d", p.Request().URL.String())
}

func TestQueryAppendsInCallOrder(t *testing.T) {
	p := newPending(t, http.MethodGet).
		Segment("content").
		Query("spaceKey", "ICF").
		Query("title", "My+Fancy+Page+Title").
		Query("expand", "version")

	require.NoError(t, p.Err())
	assert.Equal(t, host+"/content?spaceKey=ICF&title=My+Fancy+Page+Title&expand=version", p.Request().URL.String())
}

func TestResolveWithoutStagedValue(t *testing.T) {
	p := newPending(t, http.MethodGet).Resolve("title")

	err := p.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstruction)
	assert.ErrorIs(t, err, errMissingParameter)
}

func TestEmptyValuesAreConstructionErrors(t *testing.T) {
	assert.ErrorIs(t, newPending(t, http.MethodGet).PathParam("content id", "").Err(), errMissingValue)
	assert.ErrorIs(t, newPending(t, http.MethodGet).Query("expand", "").Err(), errMissingValue)
}

func TestErrorsAreSticky(t *testing.T) {
	p := newPending(t, http.MethodPost).
		Segment("content").
		PathParam("content id", "")

	first := p.Err()
	require.Error(t, first)
	require.ErrorIs(t, first, ErrConstruction)

	p = p.Segment("child").
		PathParam("attachment id", "").
		Query("filename", "a.png").
		Body(make(chan int)).
		Multipart(nil)

	assert.Same(t, first, p.Err(), "later failures must not replace the first error")
	assert.Nil(t, p.Request())
}

func TestSetHeader(t *testing.T) {
	p, err := newPending(t, http.MethodGet).SetHeader("X-Trace", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", p.Request().Header.Get("X-Trace"))

	p, err = p.SetHeader("Bad Header", "v")
	assert.ErrorIs(t, err, ErrHeader)
	var headerErr *HeaderError
	require.True(t, errors.As(err, &headerErr))
	assert.Equal(t, "Bad Header", headerErr.Name)
	require.NoError(t, p.Err(), "a rejected header does not poison the request")

	_, err = p.SetHeader("X-Line", "a\nb")
	assert.ErrorIs(t, err, ErrHeader)
}

func TestSetHeaderOnErroredState(t *testing.T) {
	p := newPending(t, http.MethodGet).PathParam("content id", "")
	want := p.Err()

	p, err := p.SetHeader("X-Trace", "abc")
	assert.Same(t, want, err)
	assert.Same(t, want, p.Err())
}

func TestMoveConsumesReceiver(t *testing.T) {
	first := newPending(t, http.MethodGet)
	second := first.Segment("content")

	require.NoError(t, second.Err())
	assert.ErrorIs(t, first.Err(), ErrConsumed)

	reused := first.Segment("space")
	assert.ErrorIs(t, reused.Err(), ErrConsumed)
}

func TestNilPending(t *testing.T) {
	var p *Pending
	assert.Error(t, p.Err())
	assert.ErrorIs(t, p.Segment("content").Err(), ErrConstruction)
}

type fakeForm struct {
	data []byte
	err  error
}

func (f fakeForm) Encode() ([]byte, string, error) {
	return f.data, "multipart/form-data; boundary=xyz", f.err
}

func TestMultipart(t *testing.T) {
	p := newPending(t, http.MethodPost).Body(map[string]string{"name": "a.png"})
	p = p.Multipart(fakeForm{data: []byte("--xyz--")})

	require.NoError(t, p.Err())
	req := p.Request()
	assert.Equal(t, "nocheck", req.Header.Get("X-Atlassian-Token"))
	assert.Equal(t, "multipart/form-data; boundary=xyz", req.Header.Get("Content-Type"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "--xyz--", string(body))
	assert.EqualValues(t, 7, req.ContentLength)

	failed := newPending(t, http.MethodPost).Multipart(fakeForm{err: errors.New("boom")})
	assert.ErrorIs(t, failed.Err(), ErrConstruction)
}

func TestBodySerializationFailure(t *testing.T) {
	p := newPending(t, http.MethodPost).Body(func() {})

	err := p.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstruction)
	assert.Contains(t, err.Error(), "unable to serialize body")
}

func TestSendSkipsNetworkOnConstructionError(t *testing.T) {
	var called bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	p := New(&Transport{HTTP: ts.Client()}, http.MethodGet, ts.URL, nil).PathParam("content id", "")
	resp, err := p.Send(context.Background())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrConstruction)
	assert.False(t, called)
}

func TestSendWrapsTransportErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	_, err := New(&Transport{}, http.MethodGet, ts.URL, nil).Send(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestSendDeliversRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/content/42", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"x"}`, string(body))
		w.WriteHeader(http.StatusTeapot)
	}))
	defer ts.Close()

	p := New(&Transport{HTTP: ts.Client()}, http.MethodPut, ts.URL, nil).
		Body(map[string]string{"title": "x"}).
		Segment("content").
		PathParam("content id", "42")

	resp, err := p.Send(context.Background())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestSendLogsTraceID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	var buf bytes.Buffer
	tr := &Transport{HTTP: ts.Client(), Log: logger.NewWithWriter(&buf, true)}
	resp, err := New(tr, http.MethodGet, ts.URL, nil).Send(context.Background())
	require.NoError(t, err)
	resp.Body.Close()

	_, rest, ok := strings.Cut(buf.String(), "[DEBUG] [")
	require.True(t, ok, "log: %q", buf.String())
	id, _, ok := strings.Cut(rest, "]")
	require.True(t, ok)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.Contains(t, rest, "GET ")
	assert.Contains(t, rest, " -> 200")
}
