package errors

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}

func TestBuilderChain(t *testing.T) {
	ee := Newf("min %.1f must be below max %.1f", 50.0, 20.0).
		Component("annotator").
		Category(CategoryValidation).
		Context("operation", "set_frequency_range").
		Build()

	assert.Equal(t, "min 50.0 must be below max 20.0", ee.Error())
	assert.Equal(t, "annotator", ee.Component)
	assert.True(t, IsCategory(ee, CategoryValidation))
	assert.Equal(t, "set_frequency_range", ee.GetContext()["operation"])
}

func TestCategoryInheritedFromWrapped(t *testing.T) {
	inner := New(NewStd("no such session")).Category(CategoryNotFound).Build()
	outer := New(fmt.Errorf("lookup: %w", inner)).Build()

	assert.Equal(t, CategoryNotFound, outer.Category)
	assert.True(t, IsNotFound(outer))
	assert.True(t, Is(outer, inner))
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"plain", NewStd("boom"), CategoryGeneric},
		{"enhanced", New(NewStd("bad")).Category(CategoryValidation).Build(), CategoryValidation},
		{"wrapped", fmt.Errorf("ctx: %w", New(NewStd("x")).Category(CategoryLimit).Build()), CategoryLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.err))
		})
	}
}

func TestGetContextReturnsCopy(t *testing.T) {
	ee := New(NewStd("x")).Context("k", "v").Build()
	ctx := ee.GetContext()
	ctx["k"] = "changed"
	assert.Equal(t, "v", ee.GetContext()["k"])
}

func TestScrubMessage(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		absent string
	}{
		{"query string", "fetch https://example.com/a?token=abc failed", "abc"},
		{"inline key", "bad api_key=secret123", "secret123"},
		{"broker credentials", "dial tcp://user:pw@broker:1883", "user:pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotContains(t, scrubMessage(tt.in), tt.absent)
		})
	}
}

type recordingReporter struct {
	reported []*EnhancedError
}

func (r *recordingReporter) ReportError(ee *EnhancedError) {
	r.reported = append(r.reported, ee)
	ee.MarkReported()
}

func (r *recordingReporter) IsEnabled() bool { return true }

func TestTelemetryReporterReceivesBuiltErrors(t *testing.T) {
	rec := &recordingReporter{}
	SetTelemetryReporter(rec)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	ee := New(NewStd("broker down")).Category(CategoryMQTTConnection).Build()

	require.Len(t, rec.reported, 1)
	assert.Same(t, ee, rec.reported[0])
	assert.True(t, ee.IsReported())
}

type captureTransport struct {
	events []*sentry.Event
}

func (c *captureTransport) Configure(sentry.ClientOptions)         {}
func (c *captureTransport) SendEvent(e *sentry.Event)              { c.events = append(c.events, e) }
func (c *captureTransport) Flush(_ time.Duration) bool              { return true }
func (c *captureTransport) FlushWithContext(_ context.Context) bool { return true }
func (c *captureTransport) Close()                                  {}

func TestSentryReporterCapturesEvent(t *testing.T) {
	transport := &captureTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: "https://public@example.com/1", Transport: transport})
	require.NoError(t, err)
	hub := sentry.NewHub(client, sentry.NewScope())

	reporter := NewSentryReporterWithHub(true, hub)
	ee := New(NewStd("connect failed at api_key=abc")).
		Component("notify").
		Category(CategoryMQTTConnection).
		Build()
	reporter.ReportError(ee)
	reporter.ReportError(ee)

	require.Len(t, transport.events, 1)
	assert.Equal(t, sentry.LevelWarning, transport.events[0].Level)
	assert.NotContains(t, transport.events[0].Message, "abc")
	assert.Equal(t, "Notify Network Error", transport.events[0].Exception[0].Type)
}

func TestDisabledSentryReporter(t *testing.T) {
	assert.False(t, NewSentryReporter(false).IsEnabled())
	var nilReporter *SentryReporter
	assert.False(t, nilReporter.IsEnabled())
}
