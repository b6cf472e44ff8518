// env.go - environment variable configuration and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CALLSCOPE_WEBSERVER_PORT.
const EnvPrefix = "CALLSCOPE"

// envBinding holds metadata for environment variable bindings
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns the bindings that get their value checked before use
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "CALLSCOPE_DEBUG", validateEnvBool},
		{"logging.default_level", "CALLSCOPE_LOG_LEVEL", validateEnvLogLevel},
		{"webserver.port", "CALLSCOPE_WEBSERVER_PORT", validateEnvPort},
		{"mqtt.enabled", "CALLSCOPE_MQTT_ENABLED", validateEnvBool},
		{"mqtt.broker", "CALLSCOPE_MQTT_BROKER", validateEnvBrokerURL},
		{"telemetry.enabled", "CALLSCOPE_TELEMETRY_ENABLED", validateEnvBool},
		{"annotator.persistent_lines", "CALLSCOPE_PERSISTENT_LINES", validateEnvBool},
	}
}

// bindEnvVars binds the explicit variables and validates any that are set
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}
		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be between 1 and 65535")
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	if !validLogLevel(value) {
		return fmt.Errorf("must be one of trace, debug, info, warn, error")
	}
	return nil
}

func validateEnvBrokerURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("not a URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must look like tcp://host:port")
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for v. Every key with a
// default can be overridden as CALLSCOPE_<SECTION>_<KEY>.
func configureEnvironmentVariables(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return bindEnvVars(v)
}
