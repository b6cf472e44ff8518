package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/observability/metrics"
)

const sseWriteTimeout = 10 * time.Second

// handleNotifications streams a session's notifications as server-sent events.
func (s *Server) handleNotifications(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}

	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	notifications, cancel := sess.Subscribe()
	defer cancel()

	log := s.log.With(logger.String("session_id", sess.ID), logger.String("ip", c.RealIP()))
	started := s.liveOpened(metrics.TransportSSE)
	defer s.liveClosed(metrics.TransportSSE, started)

	if err := s.sendSSE(c, "connected", map[string]string{"sessionId": sess.ID}); err != nil {
		return nil
	}
	log.Info("SSE client connected")
	defer log.Info("SSE client disconnected")

	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case n, ok := <-notifications:
			if !ok {
				// Session closed or this subscriber fell behind.
				_ = s.sendSSE(c, "closed", map[string]string{"sessionId": sess.ID})
				return nil
			}
			if err := s.sendSSE(c, "notification", n); err != nil {
				log.Debug("SSE send failed", logger.Error(err))
				s.liveError(metrics.TransportSSE, "write")
				return nil
			}
			s.liveMessage(metrics.TransportSSE, string(n.Type))

		case <-ticker.C:
			if err := s.sendSSE(c, "heartbeat", map[string]int64{"timestamp": time.Now().Unix()}); err != nil {
				log.Debug("SSE heartbeat failed, client likely disconnected", logger.Error(err))
				return nil
			}

		case <-c.Request().Context().Done():
			return nil
		}
	}
}

// sendSSE writes one event and flushes it.
func (s *Server) sendSSE(c echo.Context, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE data: %w", err)
	}

	rc := http.NewResponseController(c.Response().Writer)
	// Not every writer supports deadlines; httptest recorders do not.
	_ = rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout))

	if _, err := fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return fmt.Errorf("failed to write SSE message: %w", err)
	}
	c.Response().Flush()
	return nil
}

func (s *Server) liveOpened(transport string) time.Time {
	if s.metrics != nil {
		s.metrics.HTTP.LiveConnectionOpened(transport)
	}
	return time.Now()
}

func (s *Server) liveClosed(transport string, started time.Time) {
	if s.metrics != nil {
		s.metrics.HTTP.LiveConnectionClosed(transport, time.Since(started).Seconds())
	}
}

func (s *Server) liveMessage(transport, messageType string) {
	if s.metrics != nil {
		s.metrics.HTTP.RecordLiveMessage(transport, messageType)
	}
}

func (s *Server) liveError(transport, errorType string) {
	if s.metrics != nil {
		s.metrics.HTTP.RecordLiveError(transport, errorType)
	}
}
