package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/session"
)

// maxPointerBatch bounds the number of events in one pointer request.
const maxPointerBatch = 256

func (s *Server) lookup(c echo.Context) (*session.Session, error) {
	return s.manager.Get(c.Param("id"))
}

func (s *Server) handleCreateSession(c echo.Context) error {
	var view session.View
	if err := c.Bind(&view); err != nil {
		return err
	}
	sess, err := s.manager.Create(view)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CreateSessionResponse{ID: sess.ID, Frame: sess.Frame()})
}

func (s *Server) handleGetSession(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SessionResponse{ID: sess.ID, View: sess.View(), Frame: sess.Frame()})
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if !s.manager.Delete(id) {
		_, err := s.manager.Get(id)
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handlePointer(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	var req PointerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if len(req.Events) > maxPointerBatch {
		return badRequest("at most %d events per request, got %d", maxPointerBatch, len(req.Events))
	}
	events, err := toEvents(req.Events)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.HandlePointer(events...))
}

func toEvents(dtos []pointerEventDTO) ([]annotator.PointerEvent, error) {
	events := make([]annotator.PointerEvent, 0, len(dtos))
	for _, d := range dtos {
		ev, err := d.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *Server) handleUpdateView(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	var u session.ViewUpdate
	if err := c.Bind(&u); err != nil {
		return err
	}
	frame, err := sess.UpdateView(u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, frame)
}

func (s *Server) handleFrequencyRange(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	var req FrequencyRangeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Min == nil || req.Max == nil {
		return badRequest("min and max are required")
	}
	frame, err := sess.SetFrequencyRange(*req.Min, *req.Max)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, frame)
}

func (s *Server) handleListSelections(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	selections := sess.Selections()
	if selections == nil {
		selections = []annotator.Selection{}
	}
	return c.JSON(http.StatusOK, SelectionsResponse{Selections: selections})
}

func (s *Server) handleClearSelections(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.ClearSelections())
}

func (s *Server) handleHover(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	var req HoverRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	switch req.Action {
	case HoverHide:
		return c.JSON(http.StatusOK, sess.HideHover())
	case HoverRefresh:
		return c.JSON(http.StatusOK, sess.RefreshHover())
	default:
		return badRequest("hover action must be %q or %q, got %q", HoverHide, HoverRefresh, req.Action)
	}
}

func (s *Server) handlePersistentLines(c echo.Context) error {
	sess, err := s.lookup(c)
	if err != nil {
		return err
	}
	var req PersistentLinesRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Enabled == nil {
		return badRequest("enabled is required")
	}
	s.log.Debug("persistent lines toggled",
		logger.String("session_id", sess.ID),
		logger.Bool("enabled", *req.Enabled))
	return c.JSON(http.StatusOK, sess.SetPersistentLinesEnabled(*req.Enabled))
}
