// Package session hosts annotator engines for remote clients. Each Session owns one engine
// and serializes every call into it, so the engine sees a single event stream the way it
// would on a UI thread.
package session

import (
	"sync"
	"time"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/logger"
)

// Event is a notification tagged with the session that raised it.
type Event struct {
	SessionID    string                 `json:"sessionId"`
	Notification annotator.Notification `json:"notification"`
}

// Sink receives every notification of every session. It is called with the session lock
// held and must not block.
type Sink func(Event)

type releaser interface {
	Release()
}

// Session is one engine plus its host view.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	view     View
	engine   *annotator.Engine
	recorder releaser
	lastUsed time.Time
	closed   bool

	subBuffer int
	subs      map[uint64]chan annotator.Notification
	nextSub   uint64
	sinks     []Sink

	log logger.Logger
}

// notify fans a notification out to subscribers and sinks. Runs under s.mu from inside an
// engine call.
func (s *Session) notify(n annotator.Notification) {
	for id, ch := range s.subs {
		select {
		case ch <- n:
		default:
			s.log.Warn("dropping slow notification subscriber",
				logger.String("session_id", s.ID),
				logger.String("notification", string(n.Type)))
			close(ch)
			delete(s.subs, id)
		}
	}
	for _, sink := range s.sinks {
		sink(Event{SessionID: s.ID, Notification: n})
	}
}

func (s *Session) touch() {
	s.lastUsed = time.Now()
}

// LastUsed returns when the session last served a call.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// View returns the current host view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Frame returns the current render snapshot.
func (s *Session) Frame() annotator.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.engine.Frame()
}

// HandlePointer feeds events to the engine in order and returns the resulting frame.
func (s *Session) HandlePointer(events ...annotator.PointerEvent) annotator.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	for _, ev := range events {
		s.engine.Handle(ev)
	}
	return s.engine.Frame()
}

// UpdateView applies a partial view change, then re-projects and redraws the hover.
func (s *Session) UpdateView(u ViewUpdate) (annotator.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	next := s.view.Apply(u)
	if err := next.Validate(); err != nil {
		return annotator.Frame{}, err
	}
	s.view = next
	s.engine.UpdateSelections()
	s.engine.RefreshHover()
	return s.engine.Frame(), nil
}

// SetFrequencyRange changes the displayed frequency bounds.
func (s *Session) SetFrequencyRange(minFreq, maxFreq float64) (annotator.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.engine.SetFrequencyRange(minFreq, maxFreq); err != nil {
		return annotator.Frame{}, err
	}
	s.engine.RefreshHover()
	return s.engine.Frame(), nil
}

// ClearSelections removes every selection.
func (s *Session) ClearSelections() annotator.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.engine.ClearSelections()
	return s.engine.Frame()
}

// HideHover force-hides the crosshair.
func (s *Session) HideHover() annotator.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.engine.HideHover()
	return s.engine.Frame()
}

// RefreshHover redraws the crosshair at the last pointer position.
func (s *Session) RefreshHover() annotator.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.engine.RefreshHover()
	return s.engine.Frame()
}

// SetPersistentLinesEnabled toggles marker placement.
func (s *Session) SetPersistentLinesEnabled(enabled bool) annotator.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.engine.SetPersistentLinesEnabled(enabled)
	return s.engine.Frame()
}

// Selections returns the domain truth of every selection.
func (s *Session) Selections() []annotator.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Selections()
}

// Subscribe returns a buffered channel of this session's notifications and a function that
// ends the subscription. The channel is closed when the subscription ends, when the
// subscriber falls behind, or when the session closes.
func (s *Session) Subscribe() (<-chan annotator.Notification, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan annotator.Notification, s.subBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				close(sub)
				delete(s.subs, id)
			}
		})
	}
}

// Closed reports whether the session was closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// close ends all subscriptions and drops the engine's metric contribution. Idempotent.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	if s.recorder != nil {
		s.recorder.Release()
	}
}
