// Package buildinfo holds build-time metadata, kept apart from user configuration.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// UnknownValue is reported for metadata the build did not set.
const UnknownValue = "unknown"

// Set with -ldflags "-X github.com/tphakala/callscope/internal/buildinfo.version=...".
var (
	version   string
	buildDate string
)

// Context is the metadata of the running binary.
type Context struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

// NewContext returns a Context with the given values.
func NewContext(version, buildDate string) *Context {
	return &Context{Version: version, BuildDate: buildDate, GoVersion: runtime.Version()}
}

// Current returns the metadata linked into this binary. Without ldflags the module version
// from the embedded build info is used.
func Current() *Context {
	v := version
	if v == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return NewContext(v, buildDate)
}

// GetVersion returns the version or UnknownValue.
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return UnknownValue
	}
	return c.Version
}

// GetBuildDate returns the build date or UnknownValue.
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return UnknownValue
	}
	return c.BuildDate
}

// String formats the metadata for the version command.
func (c *Context) String() string {
	goVersion := runtime.Version()
	if c != nil && c.GoVersion != "" {
		goVersion = c.GoVersion
	}
	return fmt.Sprintf("callscope %s (built %s, %s)", c.GetVersion(), c.GetBuildDate(), goVersion)
}
