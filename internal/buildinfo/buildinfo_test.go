package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextAccessors(t *testing.T) {
	tests := []struct {
		name      string
		ctx       *Context
		version   string
		buildDate string
	}{
		{"nil context", nil, UnknownValue, UnknownValue},
		{"empty values", NewContext("", ""), UnknownValue, UnknownValue},
		{"set values", NewContext("1.2.0", "2026-10-01"), "1.2.0", "2026-10-01"},
		{"pre-release", NewContext("1.2.0-beta.1", ""), "1.2.0-beta.1", UnknownValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.version, tt.ctx.GetVersion())
			assert.Equal(t, tt.buildDate, tt.ctx.GetBuildDate())
		})
	}
}

func TestString(t *testing.T) {
	c := &Context{Version: "1.2.0", BuildDate: "2026-10-01", GoVersion: "go1.26.0"}
	assert.Equal(t, "callscope 1.2.0 (built 2026-10-01, go1.26.0)", c.String())

	var nilCtx *Context
	assert.Contains(t, nilCtx.String(), "callscope unknown (built unknown, go")
}

func TestCurrentFillsGoVersion(t *testing.T) {
	assert.NotEmpty(t, Current().GoVersion)
}
