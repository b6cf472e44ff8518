package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/conf"
	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/observability/metrics"
)

// Config controls session lifetime and engine construction.
type Config struct {
	TTL              time.Duration
	CleanupInterval  time.Duration
	MaxSessions      int // 0 means unlimited
	SubscriberBuffer int
	Annotator        annotator.Config
}

// DefaultConfig returns a config suitable for tests and local use.
func DefaultConfig() Config {
	return Config{
		TTL:              30 * time.Minute,
		CleanupInterval:  5 * time.Minute,
		MaxSessions:      100,
		SubscriberBuffer: 32,
		Annotator:        annotator.DefaultConfig(),
	}
}

// ConfigFromSettings builds a Config from the session and annotator sections.
func ConfigFromSettings(s *conf.Settings) Config {
	return Config{
		TTL:              s.Session.TTL,
		CleanupInterval:  s.Session.CleanupInterval,
		MaxSessions:      s.Session.MaxSessions,
		SubscriberBuffer: s.Session.SubscriberBuffer,
		Annotator:        s.ToAnnotatorConfig(),
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics reports engine statistics and the live session count.
func WithMetrics(m *metrics.AnnotatorMetrics) Option {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// WithSink forwards every notification of every session to sink.
func WithSink(sink Sink) Option {
	return func(mgr *Manager) {
		if sink != nil {
			mgr.sinks = append(mgr.sinks, sink)
		}
	}
}

// WithLogger sets the logger handed to the manager and its engines.
func WithLogger(l logger.Logger) Option {
	return func(mgr *Manager) {
		if l != nil {
			mgr.log = l
		}
	}
}

// WithIDGenerator replaces the session ID generator.
func WithIDGenerator(f func() string) Option {
	return func(mgr *Manager) {
		if f != nil {
			mgr.newID = f
		}
	}
}

// Manager keeps sessions in an expiring cache. Any access refreshes a session's TTL and an
// expired or deleted session is closed.
type Manager struct {
	cfg     Config
	cache   *cache.Cache
	metrics *metrics.AnnotatorMetrics
	sinks   []Sink
	log     logger.Logger
	newID   func() string

	createMu sync.Mutex // serializes the capacity check with insertion
}

// NewManager validates cfg and returns an empty manager.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.Newf("session ttl must be positive, got %s", cfg.TTL).
			Component("session").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if cfg.SubscriberBuffer < 1 {
		cfg.SubscriberBuffer = 1
	}
	if err := cfg.Annotator.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:   cfg,
		cache: cache.New(cfg.TTL, cfg.CleanupInterval),
		log:   GetLogger(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cache.OnEvicted(m.onEvicted)
	return m, nil
}

func (m *Manager) onEvicted(id string, v any) {
	if s, ok := v.(*Session); ok {
		s.close()
	}
	m.log.Debug("session closed", logger.String("session_id", id))
	m.reportActive()
}

func (m *Manager) reportActive() {
	if m.metrics != nil {
		m.metrics.SetSessionsActive(m.cache.ItemCount())
	}
}

// Create starts a session over view.
func (m *Manager) Create(view View) (*Session, error) {
	if err := view.Validate(); err != nil {
		return nil, err
	}

	m.createMu.Lock()
	defer m.createMu.Unlock()

	m.cache.DeleteExpired()
	if m.cfg.MaxSessions > 0 && m.cache.ItemCount() >= m.cfg.MaxSessions {
		return nil, errors.Newf("session limit of %d reached", m.cfg.MaxSessions).
			Component("session").
			Category(errors.CategoryLimit).
			Context("max_sessions", m.cfg.MaxSessions).
			Build()
	}

	now := time.Now()
	s := &Session{
		ID:        m.newID(),
		CreatedAt: now,
		view:      view,
		lastUsed:  now,
		subBuffer: m.cfg.SubscriberBuffer,
		subs:      make(map[uint64]chan annotator.Notification),
		sinks:     m.sinks,
	}
	s.log = m.log.With(logger.String("session_id", s.ID))

	opts := []annotator.Option{
		annotator.WithLogger(m.log.Module("annotator").With(logger.String("session_id", s.ID))),
		annotator.WithObserver(annotator.ObserverFunc(s.notify)),
	}
	if m.metrics != nil {
		rec := m.metrics.SessionRecorder()
		s.recorder = rec
		opts = append(opts, annotator.WithRecorder(rec))
	}

	engine, err := annotator.New(hostView{view: &s.view}, m.cfg.Annotator, opts...)
	if err != nil {
		if s.recorder != nil {
			s.recorder.Release()
		}
		return nil, fmt.Errorf("create engine: %w", err)
	}
	s.engine = engine

	m.cache.Set(s.ID, s, cache.DefaultExpiration)
	m.reportActive()
	m.log.Info("session created",
		logger.String("session_id", s.ID),
		logger.Float64("duration", view.Duration),
		logger.Float64("zoom", view.Zoom))
	return s, nil
}

// Get returns a live session and refreshes its TTL.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, errors.Newf("session %s not found", id).
			Component("session").
			Category(errors.CategoryNotFound).
			Context("session_id", id).
			Build()
	}
	s := v.(*Session)
	m.cache.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete closes and removes a session. It reports false when no such session exists.
func (m *Manager) Delete(id string) bool {
	if _, ok := m.cache.Get(id); !ok {
		return false
	}
	m.cache.Delete(id)
	return true
}

// Count returns the number of live sessions, including expired ones not yet purged.
func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

// DeleteExpired purges expired sessions now instead of waiting for the janitor.
func (m *Manager) DeleteExpired() {
	m.cache.DeleteExpired()
}

// Close closes every session.
func (m *Manager) Close() {
	m.cache.DeleteExpired()
	for id := range m.cache.Items() {
		m.cache.Delete(id)
	}
	m.log.Info("session manager closed")
}
