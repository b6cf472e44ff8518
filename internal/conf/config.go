// config.go: settings struct for callscope and the functions that load it.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/logger"
)

// AnnotatorSettings holds the engine thresholds. Units follow annotator.Config.
type AnnotatorSettings struct {
	RenderHeight     float64 `yaml:"render_height" mapstructure:"render_height"`
	MinFreq          float64 `yaml:"min_freq" mapstructure:"min_freq"` // kHz
	MaxFreq          float64 `yaml:"max_freq" mapstructure:"max_freq"` // kHz
	EdgeThreshold    float64 `yaml:"edge_threshold" mapstructure:"edge_threshold"`
	MinGesturePixels float64 `yaml:"min_gesture_pixels" mapstructure:"min_gesture_pixels"`
	MarkerTolerance  float64 `yaml:"marker_tolerance" mapstructure:"marker_tolerance"`
	MaxMarkers       int     `yaml:"max_markers" mapstructure:"max_markers"`
	ShortSelectionMs float64 `yaml:"short_selection_ms" mapstructure:"short_selection_ms"`
	MinDuration      float64 `yaml:"min_duration" mapstructure:"min_duration"`   // seconds
	MinBandwidth     float64 `yaml:"min_bandwidth" mapstructure:"min_bandwidth"` // kHz
	ScrollbarBand    float64 `yaml:"scrollbar_band" mapstructure:"scrollbar_band"`
	LabelFlipMargin  float64 `yaml:"label_flip_margin" mapstructure:"label_flip_margin"`
	LabelOffset      float64 `yaml:"label_offset" mapstructure:"label_offset"`
	TooltipGap       float64 `yaml:"tooltip_gap" mapstructure:"tooltip_gap"`
	TooltipWidth     float64 `yaml:"tooltip_width" mapstructure:"tooltip_width"`
	TooltipHeight    float64 `yaml:"tooltip_height" mapstructure:"tooltip_height"`
	AffordanceSize   float64 `yaml:"affordance_size" mapstructure:"affordance_size"`
	PersistentLines  bool    `yaml:"persistent_lines" mapstructure:"persistent_lines"`
}

// WebServerSettings configures the HTTP host.
type WebServerSettings struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Host    string `yaml:"host" mapstructure:"host"`
	Port    int    `yaml:"port" mapstructure:"port"`
	Debug   bool   `yaml:"debug" mapstructure:"debug"`
}

// Address returns host:port for the listener.
func (w WebServerSettings) Address() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// SessionSettings configures the engine session store.
type SessionSettings struct {
	TTL              time.Duration `yaml:"ttl" mapstructure:"ttl"`                           // idle time before a session expires
	CleanupInterval  time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"` // how often expired sessions are purged
	MaxSessions      int           `yaml:"max_sessions" mapstructure:"max_sessions"`         // 0 means unlimited
	SubscriberBuffer int           `yaml:"subscriber_buffer" mapstructure:"subscriber_buffer"`
}

// MQTTSettings configures the expand-selection publisher.
type MQTTSettings struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Broker         string        `yaml:"broker" mapstructure:"broker"` // e.g. tcp://localhost:1883
	Topic          string        `yaml:"topic" mapstructure:"topic"`   // base topic
	ClientID       string        `yaml:"client_id" mapstructure:"client_id"`
	Username       string        `yaml:"username" mapstructure:"username"`
	Password       string        `yaml:"password" mapstructure:"password"`
	QoS            int           `yaml:"qos" mapstructure:"qos"`
	Retain         bool          `yaml:"retain" mapstructure:"retain"`
	AllEvents      bool          `yaml:"all_events" mapstructure:"all_events"` // publish every notification, not only expand
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// TelemetrySettings configures optional Sentry error reporting.
type TelemetrySettings struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	DSN         string `yaml:"dsn" mapstructure:"dsn"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// TUISettings configures the terminal host.
type TUISettings struct {
	CellWidth  float64 `yaml:"cell_width" mapstructure:"cell_width"`   // pixels per terminal column
	CellHeight float64 `yaml:"cell_height" mapstructure:"cell_height"` // pixels per terminal row
	Duration   float64 `yaml:"duration" mapstructure:"duration"`       // seconds of audio shown
	Zoom       float64 `yaml:"zoom" mapstructure:"zoom"`               // initial pixels per second
	ZoomStep   float64 `yaml:"zoom_step" mapstructure:"zoom_step"`     // multiplier for + and -
	ScrollStep float64 `yaml:"scroll_step" mapstructure:"scroll_step"` // pixels per arrow key
}

// Settings is the root of the configuration.
type Settings struct {
	Debug     bool                 `yaml:"debug" mapstructure:"debug"`
	Logging   logger.LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Annotator AnnotatorSettings    `yaml:"annotator" mapstructure:"annotator"`
	WebServer WebServerSettings    `yaml:"webserver" mapstructure:"webserver"`
	Session   SessionSettings      `yaml:"session" mapstructure:"session"`
	MQTT      MQTTSettings         `yaml:"mqtt" mapstructure:"mqtt"`
	Telemetry TelemetrySettings    `yaml:"telemetry" mapstructure:"telemetry"`
	TUI       TUISettings          `yaml:"tui" mapstructure:"tui"`
}

// ToAnnotatorConfig maps the annotator section onto the engine config.
func (s *Settings) ToAnnotatorConfig() annotator.Config {
	a := s.Annotator
	return annotator.Config{
		RenderHeight:           a.RenderHeight,
		MinFreq:                a.MinFreq,
		MaxFreq:                a.MaxFreq,
		EdgeThreshold:          a.EdgeThreshold,
		MinGesturePixels:       a.MinGesturePixels,
		MarkerTolerance:        a.MarkerTolerance,
		MaxMarkers:             a.MaxMarkers,
		ShortSelectionMs:       a.ShortSelectionMs,
		MinDuration:            a.MinDuration,
		MinBandwidth:           a.MinBandwidth,
		ScrollbarBand:          a.ScrollbarBand,
		LabelFlipMargin:        a.LabelFlipMargin,
		LabelOffset:            a.LabelOffset,
		TooltipGap:             a.TooltipGap,
		TooltipWidth:           a.TooltipWidth,
		TooltipHeight:          a.TooltipHeight,
		AffordanceSize:         a.AffordanceSize,
		PersistentLinesEnabled: a.PersistentLines,
	}
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configFile, or the first config.yaml found on the default search paths when
// configFile is empty, applies environment overrides and validates the result. A missing
// config file is not an error; defaults apply.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	v, err := initViper(configFile)
	if err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryFileParsing).
			Context("operation", "unmarshal_config").
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error validating settings: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper builds a viper instance with defaults, the config file and env bindings.
func initViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaultConfig(v)

	if err := configureEnvironmentVariables(v); err != nil {
		// Bad env values are reported but do not stop startup; validation catches the rest.
		GetLogger().Warn("environment configuration issues", logger.Error(err))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		for _, path := range GetDefaultConfigPaths() {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			GetLogger().Info("no config file found, using defaults")
			return v, nil
		}
		return nil, errors.New(fmt.Errorf("fatal error reading config file: %w", err)).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("config_file", configFile).
			Build()
	}
	GetLogger().Debug("config file loaded", logger.String("path", v.ConfigFileUsed()))
	return v, nil
}

// GetDefaultConfigPaths returns the config search paths in priority order.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "callscope"))
	}
	return append(paths, "/etc/callscope")
}

// GetSettings returns the settings from the last successful Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Defaults returns settings populated only from defaults.
func Defaults() *Settings {
	v := viper.New()
	setDefaultConfig(v)
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		// defaults are static; a failure here is a programming error
		panic(fmt.Sprintf("conf: unmarshal defaults: %v", err))
	}
	return settings
}

// SaveYAMLConfig writes settings to configPath atomically through a temp file.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	tempFile, err := os.CreateTemp(dir, "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempName := tempFile.Name()
	defer func() {
		_ = os.Remove(tempName) // no-op after a successful rename
	}()

	if _, err := tempFile.Write(yamlData); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err := os.Rename(tempName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}
