package replay

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/callscope/internal/annotator"
	script "github.com/tphakala/callscope/internal/replay"
)

func sampleResult() *script.Result {
	return &script.Result{
		Frame: annotator.Frame{State: "idle", Selections: []annotator.SelectionView{}, Markers: []annotator.MarkerView{}},
		Selections: []annotator.Selection{},
		Notifications: []annotator.Notification{
			{Type: annotator.NotifyMarkerAdded, Frequency: 54.25},
		},
	}
}

func TestWriteFormats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, sampleResult(), FormatJSON))

		var doc map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		assert.Contains(t, doc, "frame")
		assert.Contains(t, doc, "notifications")
	})

	t.Run("yaml keeps json field names", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, sampleResult(), FormatYAML))

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
		frame, ok := doc["frame"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, frame, "persistentLinesEnabled")
		assert.Contains(t, buf.String(), "type: marker-added")
	})
}

func TestCommandRejectsUnknownFormat(t *testing.T) {
	cmd := Command(nil)
	cmd.SetArgs([]string{"--format", "xml", "script.yaml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
