package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/callscope/internal/annotator"
)

type sseEvent struct {
	name string
	data string
}

// readSSE parses events from r onto a channel until the stream ends.
func readSSE(r *bufio.Reader) <-chan sseEvent {
	out := make(chan sseEvent, 16)
	go func() {
		defer close(out)
		var ev sseEvent
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data = strings.TrimPrefix(line, "data: ")
			case line == "":
				out <- ev
				ev = sseEvent{}
			}
		}
	}()
	return out
}

func nextSSE(t *testing.T, events <-chan sseEvent) sseEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "stream ended early")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SSE event")
		return sseEvent{}
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestNotificationStream(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.server.Echo())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/v1/sessions", testView())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/sessions/s-1/notifications", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	stream, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = stream.Body.Close() }()

	require.Equal(t, http.StatusOK, stream.StatusCode)
	assert.True(t, strings.HasPrefix(stream.Header.Get("Content-Type"), "text/event-stream"))

	events := readSSE(bufio.NewReader(stream.Body))
	ev := nextSSE(t, events)
	assert.Equal(t, "connected", ev.name)
	assert.JSONEq(t, `{"sessionId":"s-1"}`, ev.data)

	resp = postJSON(t, ts.URL+"/api/v1/sessions/s-1/pointer", dragEvents(100, 100, 300, 300))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	ev = nextSSE(t, events)
	require.Equal(t, "notification", ev.name)
	var n annotator.Notification
	require.NoError(t, json.Unmarshal([]byte(ev.data), &n))
	assert.Equal(t, annotator.NotifySelectionCreated, n.Type)
	assert.NotEmpty(t, n.SelectionID)

	require.True(t, env.manager.Delete("s-1"))
	ev = nextSSE(t, events)
	assert.Equal(t, "closed", ev.name)

	_, ok := <-events
	assert.False(t, ok, "stream ends after the session closes")
}

func TestNotificationStreamUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/api/v1/sessions/missing/notifications", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
