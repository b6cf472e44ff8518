package api

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/observability/metrics"
	"github.com/tphakala/callscope/internal/session"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 64 * 1024
	wsSendBuffer     = 16
)

// Inbound websocket message types.
const (
	WSPointer         = "pointer"
	WSView            = "view"
	WSFrequencyRange  = "frequency-range"
	WSClearSelections = "clear-selections"
	WSHover           = "hover"
	WSPersistentLines = "persistent-lines"
)

// Outbound websocket message types.
const (
	WSFrame        = "frame"
	WSNotification = "notification"
	WSError        = "error"
)

// WSRequest is a client message. Type selects which of the other fields is read.
type WSRequest struct {
	Type            string                 `json:"type"`
	Events          []pointerEventDTO      `json:"events,omitempty"`
	View            *session.ViewUpdate    `json:"view,omitempty"`
	FrequencyRange  *FrequencyRangeRequest `json:"frequencyRange,omitempty"`
	Hover           string                 `json:"hover,omitempty"`
	PersistentLines *bool                  `json:"persistentLines,omitempty"`
}

// WSMessage is a server message.
type WSMessage struct {
	Type         string                  `json:"type"`
	Frame        *annotator.Frame        `json:"frame,omitempty"`
	Notification *annotator.Notification `json:"notification,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

type wsClient struct {
	conn       *websocket.Conn
	send       chan WSMessage
	done       chan struct{} // closed when the read loop exits
	writerDone chan struct{} // closed when the write pump exits
	log        logger.Logger
}

// handleWebSocket upgrades to a websocket that accepts engine input and streams frames and
// notifications back.
func (s *Server) handleWebSocket(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already replied.
		s.log.Warn("websocket upgrade failed", logger.Error(err))
		s.liveError(metrics.TransportWebSocket, "upgrade")
		return nil
	}

	notifications, cancel := sess.Subscribe()
	defer cancel()

	started := s.liveOpened(metrics.TransportWebSocket)
	defer s.liveClosed(metrics.TransportWebSocket, started)

	client := &wsClient{
		conn:       conn,
		send:       make(chan WSMessage, wsSendBuffer),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
		log:        s.log.With(logger.String("session_id", sess.ID)),
	}
	client.log.Info("websocket client connected")

	go s.writePump(client, notifications)

	frame := sess.Frame()
	if client.enqueue(WSMessage{Type: WSFrame, Frame: &frame}) {
		s.readPump(client, sess)
	}
	close(client.done)
	<-client.writerDone

	client.log.Info("websocket client disconnected")
	return nil
}

// enqueue hands msg to the write pump. It reports false once the pump is gone.
func (c *wsClient) enqueue(msg WSMessage) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.writerDone:
		return false
	}
}

func (s *Server) readPump(c *wsClient, sess *session.Session) {
	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read error", logger.Error(err))
				s.liveError(metrics.TransportWebSocket, "read")
			}
			return
		}

		var req WSRequest
		var reply WSMessage
		if err := json.Unmarshal(data, &req); err != nil {
			reply = WSMessage{Type: WSError, Error: "invalid message: " + err.Error()}
		} else {
			reply = dispatchWS(sess, req)
		}
		if !c.enqueue(reply) {
			return
		}
	}
}

// dispatchWS applies one client request and returns the reply.
func dispatchWS(sess *session.Session, req WSRequest) WSMessage {
	var (
		frame annotator.Frame
		err   error
	)
	switch req.Type {
	case WSPointer:
		var events []annotator.PointerEvent
		if events, err = toEvents(req.Events); err == nil {
			frame = sess.HandlePointer(events...)
		}
	case WSView:
		if req.View == nil {
			err = badRequest("view is required")
		} else {
			frame, err = sess.UpdateView(*req.View)
		}
	case WSFrequencyRange:
		if req.FrequencyRange == nil || req.FrequencyRange.Min == nil || req.FrequencyRange.Max == nil {
			err = badRequest("frequencyRange.min and frequencyRange.max are required")
		} else {
			frame, err = sess.SetFrequencyRange(*req.FrequencyRange.Min, *req.FrequencyRange.Max)
		}
	case WSClearSelections:
		frame = sess.ClearSelections()
	case WSHover:
		switch req.Hover {
		case HoverHide:
			frame = sess.HideHover()
		case HoverRefresh:
			frame = sess.RefreshHover()
		default:
			err = badRequest("hover must be %q or %q, got %q", HoverHide, HoverRefresh, req.Hover)
		}
	case WSPersistentLines:
		if req.PersistentLines == nil {
			err = badRequest("persistentLines is required")
		} else {
			frame = sess.SetPersistentLinesEnabled(*req.PersistentLines)
		}
	default:
		err = badRequest("unknown message type %q", req.Type)
	}

	if err != nil {
		return WSMessage{Type: WSError, Error: err.Error()}
	}
	return WSMessage{Type: WSFrame, Frame: &frame}
}

func (s *Server) writePump(c *wsClient, notifications <-chan annotator.Notification) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		close(c.writerDone)
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				s.liveError(metrics.TransportWebSocket, "write")
				return
			}
			s.liveMessage(metrics.TransportWebSocket, msg.Type)

		case n, ok := <-notifications:
			if !ok {
				c.closeWith(websocket.CloseGoingAway, "session closed")
				return
			}
			if err := c.write(WSMessage{Type: WSNotification, Notification: &n}); err != nil {
				s.liveError(metrics.TransportWebSocket, "write")
				return
			}
			s.liveMessage(metrics.TransportWebSocket, string(n.Type))

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.closeWith(websocket.CloseNormalClosure, "")
			return
		}
	}
}

func (c *wsClient) write(msg WSMessage) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(msg)
}

func (c *wsClient) closeWith(code int, text string) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
}
