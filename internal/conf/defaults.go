// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/tphakala/callscope/internal/logger"
)

// setDefaultConfig sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("logging.default_level", logger.DefaultLogLevel)
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	v.SetDefault("logging.console.level", logger.DefaultLogLevel)
	v.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	v.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	v.SetDefault("logging.file_output.level", logger.DefaultLogLevel)

	v.SetDefault("annotator.render_height", 800.0)
	v.SetDefault("annotator.min_freq", 10.0)
	v.SetDefault("annotator.max_freq", 128.0)
	v.SetDefault("annotator.edge_threshold", 5.0)
	v.SetDefault("annotator.min_gesture_pixels", 3.0)
	v.SetDefault("annotator.marker_tolerance", 1.0)
	v.SetDefault("annotator.max_markers", 5)
	v.SetDefault("annotator.short_selection_ms", 100.0)
	v.SetDefault("annotator.min_duration", 0.001)
	v.SetDefault("annotator.min_bandwidth", 0.1)
	v.SetDefault("annotator.scrollbar_band", 20.0)
	v.SetDefault("annotator.label_flip_margin", 120.0)
	v.SetDefault("annotator.label_offset", 12.0)
	v.SetDefault("annotator.tooltip_gap", 10.0)
	v.SetDefault("annotator.tooltip_width", 140.0)
	v.SetDefault("annotator.tooltip_height", 80.0)
	v.SetDefault("annotator.affordance_size", 14.0)
	v.SetDefault("annotator.persistent_lines", true)

	v.SetDefault("webserver.enabled", true)
	v.SetDefault("webserver.host", "127.0.0.1")
	v.SetDefault("webserver.port", 8089)
	v.SetDefault("webserver.debug", false)

	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.cleanup_interval", 5*time.Minute)
	v.SetDefault("session.max_sessions", 100)
	v.SetDefault("session.subscriber_buffer", 32)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic", "callscope")
	v.SetDefault("mqtt.client_id", "callscope")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.retain", false)
	v.SetDefault("mqtt.all_events", false)
	v.SetDefault("mqtt.connect_timeout", 10*time.Second)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.dsn", "")
	v.SetDefault("telemetry.environment", "production")

	v.SetDefault("tui.cell_width", 10.0)
	v.SetDefault("tui.cell_height", 20.0)
	v.SetDefault("tui.duration", 10.0)
	v.SetDefault("tui.zoom", 100.0)
	v.SetDefault("tui.zoom_step", 1.25)
	v.SetDefault("tui.scroll_step", 40.0)
}
