package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/session"
)

func discardLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)
}

type testEnv struct {
	t       *testing.T
	server  *Server
	manager *session.Manager
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	seq := 0
	cfg := session.DefaultConfig()
	cfg.CleanupInterval = 0
	mgr, err := session.NewManager(cfg,
		session.WithLogger(discardLogger()),
		session.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("s-%d", seq)
		}))
	require.NoError(t, err)
	t.Cleanup(mgr.Close)

	apiCfg := DefaultConfig()
	apiCfg.HeartbeatInterval = time.Hour
	srv, err := NewServer(apiCfg, mgr, append([]Option{WithLogger(discardLogger())}, opts...)...)
	require.NoError(t, err)
	return &testEnv{t: t, server: srv, manager: mgr}
}

// do sends body as JSON (or raw when it is a string) and returns the recorder.
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.Echo().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createSession() string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/v1/sessions", testView())
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp CreateSessionResponse
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func testView() map[string]any {
	return map[string]any{"duration": 2, "zoom": 500, "width": 1000, "height": 800}
}

func dragEvents(x0, y0, x1, y1 float64) map[string]any {
	return map[string]any{"events": []map[string]any{
		{"action": "move", "x": x0, "y": y0},
		{"action": "press", "button": "primary", "x": x0, "y": y0},
		{"action": "move", "x": x1, "y": y1},
		{"action": "release", "button": "primary", "x": x1, "y": y1},
	}}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
