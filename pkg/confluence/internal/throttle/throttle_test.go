package throttle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoundTripperValidation(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    Config
		expErr error
	}{
		{"zero rps", Config{RPS: 0, Burst: 1}, ErrMustNotBeZero},
		{"negative burst", Config{RPS: 1, Burst: -1}, ErrMustNotBeZero},
		{"valid", Config{RPS: 5, Burst: 2}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rt, err := NewRoundTripper(tc.cfg, nil, nil)
			if tc.expErr != nil {
				assert.ErrorIs(t, err, tc.expErr)
				assert.Nil(t, rt)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rt)
		})
	}
}

func TestRoundTripPassesThrough(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	rt, err := NewRoundTripper(Config{RPS: 100, Burst: 3}, nil, http.DefaultTransport)
	require.NoError(t, err)
	hc := &http.Client{Transport: rt}

	for i := 0; i < 3; i++ {
		resp, err := hc.Get(ts.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestRoundTripHonoursContext(t *testing.T) {
	rt, err := NewRoundTripper(Config{RPS: 1, Burst: 1}, nil, http.DefaultTransport)
	require.NoError(t, err)

	// drain the single token
	rt.(*roundTripper).limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:1/", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWaitingFailed))
}
