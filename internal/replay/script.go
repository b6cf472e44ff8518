// Package replay runs scripted gestures against an annotator session. Scripts are YAML and
// describe an initial view followed by pointer events and host calls.
package replay

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/session"
)

// Script is a replayable interaction.
type Script struct {
	View            session.View              `yaml:"view"`
	FrequencyRange  *annotator.FrequencyRange `yaml:"frequency_range,omitempty"`
	PersistentLines *bool                     `yaml:"persistent_lines,omitempty"`
	Steps           []Step                    `yaml:"steps"`
}

// Drag is shorthand for move, press, move and release with the primary button.
type Drag struct {
	From [2]float64 `yaml:"from"`
	To   [2]float64 `yaml:"to"`
}

// Click is a press and release at one point. The button defaults to primary.
type Click struct {
	X      float64          `yaml:"x"`
	Y      float64          `yaml:"y"`
	Button annotator.Button `yaml:"button,omitempty"`
}

// Step is one scripted action. Exactly one field must be set.
type Step struct {
	Pointer         *annotator.PointerEvent   `yaml:"pointer,omitempty"`
	Drag            *Drag                     `yaml:"drag,omitempty"`
	Click           *Click                    `yaml:"click,omitempty"`
	Zoom            *float64                  `yaml:"zoom,omitempty"`
	Scroll          *float64                  `yaml:"scroll,omitempty"`
	Duration        *float64                  `yaml:"duration,omitempty"`
	Expanded        *bool                     `yaml:"expanded,omitempty"`
	FrequencyRange  *annotator.FrequencyRange `yaml:"frequency_range,omitempty"`
	Clear           bool                      `yaml:"clear,omitempty"`
	HideHover       bool                      `yaml:"hide_hover,omitempty"`
	RefreshHover    bool                      `yaml:"refresh_hover,omitempty"`
	PersistentLines *bool                     `yaml:"persistent_lines,omitempty"`
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Pointer != nil, s.Drag != nil, s.Click != nil,
		s.Zoom != nil, s.Scroll != nil, s.Duration != nil, s.Expanded != nil,
		s.FrequencyRange != nil, s.Clear, s.HideHover, s.RefreshHover, s.PersistentLines != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Validate checks the initial view and that every step names exactly one action.
func (s *Script) Validate() error {
	if err := s.View.Validate(); err != nil {
		return err
	}
	for i, step := range s.Steps {
		if n := step.actions(); n != 1 {
			return errors.Newf("step %d must have exactly one action, found %d", i+1, n).
				Component("replay").
				Category(errors.CategoryValidation).
				Context("step", i+1).
				Build()
		}
	}
	return nil
}

// Load decodes and validates a script. Unknown keys are rejected.
func Load(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, errors.New(fmt.Errorf("decode replay script: %w", err)).
			Component("replay").
			Category(errors.CategoryFileParsing).
			Build()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a script from path.
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("read replay script: %w", err)).
			Component("replay").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return Load(bytes.NewReader(data))
}
