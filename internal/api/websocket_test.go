package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/session"
)

func dialSession(t *testing.T, ts *httptest.Server, id string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/sessions/" + id + "/ws"
	return websocket.DefaultDialer.Dial(url, header)
}

func readWS(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketSession(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.server.Echo())
	defer ts.Close()
	id := env.createSession()

	conn, resp, err := dialSession(t, ts, id, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer func() { _ = conn.Close() }()

	initial := readWS(t, conn)
	require.Equal(t, WSFrame, initial.Type)
	require.NotNil(t, initial.Frame)
	assert.Equal(t, "idle", initial.Frame.State)

	req := map[string]any{"type": WSPointer}
	for k, v := range dragEvents(100, 100, 300, 300) {
		req[k] = v
	}
	require.NoError(t, conn.WriteJSON(req))

	// The frame reply and the notification race through the write pump.
	got := map[string]WSMessage{}
	for range 2 {
		msg := readWS(t, conn)
		got[msg.Type] = msg
	}
	require.Contains(t, got, WSFrame)
	require.Contains(t, got, WSNotification)
	assert.Len(t, got[WSFrame].Frame.Selections, 1)
	assert.Equal(t, annotator.NotifySelectionCreated, got[WSNotification].Notification.Type)

	zoom := 1000.0
	require.NoError(t, conn.WriteJSON(WSRequest{Type: WSView, View: &session.ViewUpdate{Zoom: &zoom}}))
	msg := readWS(t, conn)
	require.Equal(t, WSFrame, msg.Type)
	assert.InDelta(t, 200, msg.Frame.Selections[0].Rect.Left, 1e-9)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dance"}))
	msg = readWS(t, conn)
	assert.Equal(t, WSError, msg.Type)
	assert.Contains(t, msg.Error, "dance")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = readWS(t, conn)
	assert.Equal(t, WSError, msg.Type)

	require.NoError(t, conn.WriteJSON(WSRequest{Type: WSClearSelections}))
	got = map[string]WSMessage{}
	for range 2 {
		msg := readWS(t, conn)
		got[msg.Type] = msg
	}
	assert.Empty(t, got[WSFrame].Frame.Selections)
	assert.Equal(t, annotator.NotifySelectionsCleared, got[WSNotification].Notification.Type)
}

func TestWebSocketClosedWithSession(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.server.Echo())
	defer ts.Close()
	id := env.createSession()

	conn, resp, err := dialSession(t, ts, id, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer func() { _ = conn.Close() }()
	readWS(t, conn)

	require.True(t, env.manager.Delete(id))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t)
	env.server.config.AllowedOrigins = []string{"http://allowed.example"}
	ts := httptest.NewServer(env.server.Echo())
	defer ts.Close()
	id := env.createSession()

	_, resp, err := dialSession(t, ts, id, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocketUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.server.Echo())
	defer ts.Close()

	_, resp, err := dialSession(t, ts, "missing", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
