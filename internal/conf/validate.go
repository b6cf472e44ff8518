// validate.go contains validation logic for callscope settings
package conf

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/tphakala/callscope/internal/logger"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct and reports every problem found
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateLoggingSettings(&settings.Logging); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	cfg := settings.ToAnnotatorConfig()
	if err := cfg.Validate(); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateSessionSettings(&settings.Session); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateMQTTSettings(&settings.MQTT); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if settings.Telemetry.Enabled && settings.Telemetry.DSN == "" {
		ve.Errors = append(ve.Errors, "telemetry is enabled but no DSN is configured")
	}

	if err := validateTUISettings(&settings.TUI); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

var logLevels = []string{
	string(logger.LogLevelTrace),
	string(logger.LogLevelDebug),
	string(logger.LogLevelInfo),
	string(logger.LogLevelWarn),
	string(logger.LogLevelError),
}

func validLogLevel(level string) bool {
	return slices.Contains(logLevels, strings.ToLower(level))
}

func validateLoggingSettings(settings *logger.LoggingConfig) error {
	var errs []string
	if settings.DefaultLevel != "" && !validLogLevel(settings.DefaultLevel) {
		errs = append(errs, fmt.Sprintf("unknown log level %q", settings.DefaultLevel))
	}
	for module, level := range settings.ModuleLevels {
		if !validLogLevel(level) {
			errs = append(errs, fmt.Sprintf("unknown log level %q for module %s", level, module))
		}
	}
	if settings.FileOutput != nil && settings.FileOutput.Enabled && settings.FileOutput.Path == "" {
		errs = append(errs, "file logging is enabled but no path is set")
	}
	if len(errs) > 0 {
		slices.Sort(errs)
		return fmt.Errorf("logging settings errors: %v", errs)
	}
	return nil
}

func validateWebServerSettings(settings *WebServerSettings) error {
	if !settings.Enabled {
		return nil
	}
	if settings.Port < 1 || settings.Port > 65535 {
		return fmt.Errorf("webserver port must be between 1 and 65535, got %d", settings.Port)
	}
	return nil
}

func validateSessionSettings(settings *SessionSettings) error {
	var errs []string
	if settings.TTL <= 0 {
		errs = append(errs, fmt.Sprintf("session ttl must be positive, got %s", settings.TTL))
	}
	if settings.CleanupInterval < 0 {
		errs = append(errs, fmt.Sprintf("session cleanup interval must not be negative, got %s", settings.CleanupInterval))
	}
	if settings.MaxSessions < 0 {
		errs = append(errs, fmt.Sprintf("max sessions must not be negative, got %d", settings.MaxSessions))
	}
	if settings.SubscriberBuffer < 1 {
		errs = append(errs, fmt.Sprintf("subscriber buffer must be at least 1, got %d", settings.SubscriberBuffer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("session settings errors: %v", errs)
	}
	return nil
}

func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}
	var errs []string
	if settings.Broker == "" {
		errs = append(errs, "broker is required")
	} else if u, err := url.Parse(settings.Broker); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("invalid broker URL %q", settings.Broker))
	}
	if settings.Topic == "" {
		errs = append(errs, "topic is required")
	}
	if settings.QoS < 0 || settings.QoS > 2 {
		errs = append(errs, fmt.Sprintf("qos must be 0, 1 or 2, got %d", settings.QoS))
	}
	if len(errs) > 0 {
		return fmt.Errorf("mqtt settings errors: %v", errs)
	}
	return nil
}

func validateTUISettings(settings *TUISettings) error {
	var errs []string
	if settings.CellWidth <= 0 || settings.CellHeight <= 0 {
		errs = append(errs, "cell width and height must be positive")
	}
	if settings.Duration <= 0 {
		errs = append(errs, "duration must be positive")
	}
	if settings.Zoom <= 0 {
		errs = append(errs, "zoom must be positive")
	}
	if settings.ZoomStep <= 1 {
		errs = append(errs, "zoom step must be greater than 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("tui settings errors: %v", errs)
	}
	return nil
}
