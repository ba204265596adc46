package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remedyhub/entitlement/internal/app/service/trial"
	"github.com/remedyhub/entitlement/pkg/types"
)

func TestApiStartTrial(t *testing.T) {
	s := newTestServer(t, time.Hour)

	_, env := s.do(t, http.MethodGet, "/api/v1/me/trial", nil, bearer(t, "u1")...)
	require.Equal(t, 0, env.Code)
	st := decode[trial.Status](t, env.Data)
	assert.Equal(t, types.TrialStateNotStarted, st.State)

	_, env = s.do(t, http.MethodPost, "/api/v1/me/trial", nil, bearer(t, "u1")...)
	require.Equal(t, 0, env.Code)
	started := decode[trial.Status](t, env.Data)
	assert.Equal(t, types.TrialStateActive, started.State)
	assert.True(t, started.Used)
	require.NotNil(t, started.StartAt)
	require.NotNil(t, started.EndAt)
	assert.Equal(t, time.Hour, started.EndAt.Sub(*started.StartAt))

	_, env = s.do(t, http.MethodPost, "/api/v1/me/trial", nil, bearer(t, "u1")...)
	require.Equal(t, 40900, env.Code)
	again := decode[trial.Status](t, env.Data)
	assert.True(t, started.StartAt.Equal(*again.StartAt))

	_, env = s.do(t, http.MethodGet, "/api/v1/me/trial", nil, bearer(t, "u1")...)
	st = decode[trial.Status](t, env.Data)
	assert.Equal(t, types.TrialStateActive, st.State)
	assert.Positive(t, st.RemainingSeconds)
}

func TestApiStartTrial_ConcurrentTabs(t *testing.T) {
	s := newTestServer(t, time.Hour)
	auth := bearer(t, "u1")

	const tabs = 8
	recorders := make(chan *httptest.ResponseRecorder, tabs)
	var wg sync.WaitGroup
	for i := 0; i < tabs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recorders <- s.serve(http.MethodPost, "/api/v1/me/trial", nil, auth...)
		}()
	}
	wg.Wait()
	close(recorders)

	var ok, used int
	for w := range recorders {
		switch readEnvelope(t, w).Code {
		case 0:
			ok++
		case 40900:
			used++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, tabs-1, used)
}

func TestApiTrialCountdown_NotStarted(t *testing.T) {
	s := newTestServer(t, time.Hour)
	w, _ := s.do(t, http.MethodGet, "/api/v1/me/trial/countdown", nil, bearer(t, "u1")...)

	body := w.Body.String()
	assert.True(t, isEventStream(w), w.Header().Get("Content-Type"))
	assert.Equal(t, 1, strings.Count(body, "event:tick"))
	assert.Contains(t, body, `"state":"not_started"`)
	assert.NotContains(t, body, "event:expired")
}

func TestApiTrialCountdown_RunsToExpiry(t *testing.T) {
	s := newTestServer(t, 200*time.Millisecond)
	_, env := s.do(t, http.MethodPost, "/api/v1/me/trial", nil, bearer(t, "u1")...)
	require.Equal(t, 0, env.Code)

	auth := bearer(t, "u1")
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- s.serve(http.MethodGet, "/api/v1/me/trial/countdown", nil, auth...)
	}()

	select {
	case w := <-done:
		require.True(t, isEventStream(w), w.Header().Get("Content-Type"))
		body := w.Body.String()
		assert.Contains(t, body, `"state":"active"`)
		assert.Equal(t, 1, strings.Count(body, "event:expired"))
		assert.Contains(t, body, `"expired":true`)
	case <-time.After(5 * time.Second):
		t.Fatal("countdown stream did not end after expiry")
	}
}
