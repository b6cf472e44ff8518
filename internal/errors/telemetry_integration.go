// Package errors - telemetry integration (optional)
package errors

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/getsentry/sentry-go"
)

// TelemetryReporter is an interface for reporting errors to telemetry systems
type TelemetryReporter interface {
	ReportError(err *EnhancedError)
	IsEnabled() bool
}

// SentryReporter implements TelemetryReporter for Sentry
type SentryReporter struct {
	enabled bool
	hub     *sentry.Hub
}

// NewSentryReporter creates a reporter that sends to the current Sentry hub.
func NewSentryReporter(enabled bool) *SentryReporter {
	return &SentryReporter{enabled: enabled, hub: sentry.CurrentHub()}
}

// NewSentryReporterWithHub creates a reporter bound to a specific hub.
func NewSentryReporterWithHub(enabled bool, hub *sentry.Hub) *SentryReporter {
	return &SentryReporter{enabled: enabled, hub: hub}
}

// IsEnabled returns whether Sentry telemetry is enabled
func (sr *SentryReporter) IsEnabled() bool {
	return sr != nil && sr.enabled && sr.hub != nil
}

// ReportError reports an enhanced error to Sentry with query strings and keys scrubbed
func (sr *SentryReporter) ReportError(ee *EnhancedError) {
	if !sr.IsEnabled() || ee.IsReported() {
		return
	}

	message := scrubMessage(fmt.Sprintf("[%s] %s", ee.Category, ee.Error()))
	title := errorTitle(ee)

	sr.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_title", title)
		scope.SetTag("component", ee.Component)
		scope.SetTag("category", string(ee.Category))

		for key, value := range ee.GetContext() {
			if s, ok := value.(string); ok {
				value = scrubMessage(s)
			}
			scope.SetContext(key, map[string]any{"value": value})
		}

		level := levelFor(ee.Category)
		scope.SetLevel(level)
		scope.SetFingerprint([]string{title, ee.Component, string(ee.Category)})

		event := sentry.NewEvent()
		event.Message = message
		event.Level = level
		event.Exception = []sentry.Exception{{Type: title, Value: message}}
		sr.hub.CaptureEvent(event)
	})

	ee.MarkReported()
}

// errorTitle builds a grouping title like "Api Validation Error Set Frequency Range"
func errorTitle(ee *EnhancedError) string {
	var parts []string
	if ee.Component != "" && ee.Component != ComponentUnknown {
		parts = append(parts, titleCase(ee.Component))
	}
	parts = append(parts, categoryTitle(ee.Category))
	if op, ok := ee.GetContext()["operation"].(string); ok && op != "" {
		words := strings.Fields(strings.ReplaceAll(op, "_", " "))
		for i, w := range words {
			words[i] = titleCase(w)
		}
		parts = append(parts, strings.Join(words, " "))
	}
	return strings.Join(parts, " ")
}

func categoryTitle(category ErrorCategory) string {
	switch category {
	case CategoryValidation:
		return "Validation Error"
	case CategoryConfiguration:
		return "Configuration Error"
	case CategoryNotFound:
		return "Not Found"
	case CategoryNetwork, CategoryMQTTConnection, CategoryMQTTPublish:
		return "Network Error"
	case CategoryFileIO, CategoryFileParsing:
		return "File Error"
	default:
		return string(category)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func levelFor(category ErrorCategory) sentry.Level {
	switch category {
	case CategoryNetwork, CategoryMQTTConnection, CategoryMQTTPublish, CategoryBroadcast:
		return sentry.LevelWarning
	case CategoryValidation, CategoryNotFound, CategoryLimit:
		return sentry.LevelInfo
	default:
		return sentry.LevelError
	}
}

var (
	reporterMu     sync.RWMutex
	globalReporter TelemetryReporter
)

// SetTelemetryReporter installs the global telemetry reporter. Pass nil to disable reporting.
func SetTelemetryReporter(reporter TelemetryReporter) {
	reporterMu.Lock()
	defer reporterMu.Unlock()
	globalReporter = reporter
	hasActiveReporting.Store(reporter != nil && reporter.IsEnabled())
}

// GetTelemetryReporter returns the current telemetry reporter
func GetTelemetryReporter() TelemetryReporter {
	reporterMu.RLock()
	defer reporterMu.RUnlock()
	return globalReporter
}

func reportToTelemetry(ee *EnhancedError) {
	if r := GetTelemetryReporter(); r != nil && r.IsEnabled() {
		r.ReportError(ee)
	}
}

var (
	urlQueryRegex = regexp.MustCompile(`(https?://[^?\s]+)\?\S*`)
	secretRegex   = regexp.MustCompile(`(?i)(api[_-]?key|token|password|auth)[=:]\S+`)
	brokerRegex   = regexp.MustCompile(`(?i)(tcp|ssl|ws|wss|mqtt)://[^@\s]+@`)
)

// scrubMessage removes query strings, inline secrets and broker credentials
func scrubMessage(message string) string {
	scrubbed := urlQueryRegex.ReplaceAllString(message, "$1?[REDACTED]")
	scrubbed = secretRegex.ReplaceAllString(scrubbed, "$1=[REDACTED]")
	scrubbed = brokerRegex.ReplaceAllString(scrubbed, "$1://[REDACTED]@")
	return scrubbed
}
