package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/session"
)

// Result is the outcome of a replay.
type Result struct {
	Frame         annotator.Frame          `json:"frame"`
	Selections    []annotator.Selection    `json:"selections"`
	Notifications []annotator.Notification `json:"notifications"`
}

// Run plays script against a fresh session built with cfg and returns the final state. It stops
// at the first failing step or when ctx ends.
func Run(ctx context.Context, script *Script, cfg annotator.Config) (*Result, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}

	var notifications []annotator.Notification
	mcfg := session.Config{
		TTL:              time.Hour,
		MaxSessions:      1,
		SubscriberBuffer: 1,
		Annotator:        cfg,
	}
	mgr, err := session.NewManager(mcfg,
		session.WithLogger(GetLogger()),
		session.WithIDGenerator(func() string { return "replay" }),
		session.WithSink(func(e session.Event) {
			notifications = append(notifications, e.Notification)
		}))
	if err != nil {
		return nil, err
	}
	defer mgr.Close()

	sess, err := mgr.Create(script.View)
	if err != nil {
		return nil, err
	}
	if fr := script.FrequencyRange; fr != nil {
		if _, err := sess.SetFrequencyRange(fr.Min, fr.Max); err != nil {
			return nil, fmt.Errorf("initial frequency range: %w", err)
		}
	}
	if script.PersistentLines != nil {
		sess.SetPersistentLinesEnabled(*script.PersistentLines)
	}

	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := apply(sess, step); err != nil {
			return nil, errors.New(fmt.Errorf("step %d: %w", i+1, err)).
				Component("replay").
				Context("step", i+1).
				Build()
		}
	}

	selections := sess.Selections()
	if selections == nil {
		selections = []annotator.Selection{}
	}
	if notifications == nil {
		notifications = []annotator.Notification{}
	}
	GetLogger().Debug("replay finished",
		logger.Int("steps", len(script.Steps)),
		logger.Int("selections", len(selections)),
		logger.Int("notifications", len(notifications)))
	return &Result{Frame: sess.Frame(), Selections: selections, Notifications: notifications}, nil
}

func apply(sess *session.Session, step Step) error {
	var err error
	switch {
	case step.Pointer != nil:
		sess.HandlePointer(*step.Pointer)
	case step.Drag != nil:
		sess.HandlePointer(dragEvents(step.Drag.From, step.Drag.To)...)
	case step.Click != nil:
		sess.HandlePointer(clickEvents(*step.Click)...)
	case step.Zoom != nil:
		_, err = sess.UpdateView(session.ViewUpdate{Zoom: step.Zoom})
	case step.Scroll != nil:
		_, err = sess.UpdateView(session.ViewUpdate{Scroll: step.Scroll})
	case step.Duration != nil:
		_, err = sess.UpdateView(session.ViewUpdate{Duration: step.Duration})
	case step.Expanded != nil:
		_, err = sess.UpdateView(session.ViewUpdate{Expanded: step.Expanded})
	case step.FrequencyRange != nil:
		_, err = sess.SetFrequencyRange(step.FrequencyRange.Min, step.FrequencyRange.Max)
	case step.Clear:
		sess.ClearSelections()
	case step.HideHover:
		sess.HideHover()
	case step.RefreshHover:
		sess.RefreshHover()
	case step.PersistentLines != nil:
		sess.SetPersistentLinesEnabled(*step.PersistentLines)
	}
	return err
}

func dragEvents(from, to [2]float64) []annotator.PointerEvent {
	return []annotator.PointerEvent{
		{Action: annotator.ActionMove, X: from[0], Y: from[1]},
		{Action: annotator.ActionPress, Button: annotator.ButtonPrimary, X: from[0], Y: from[1]},
		{Action: annotator.ActionMove, X: to[0], Y: to[1]},
		{Action: annotator.ActionRelease, Button: annotator.ButtonPrimary, X: to[0], Y: to[1]},
	}
}

func clickEvents(c Click) []annotator.PointerEvent {
	button := c.Button
	if button == "" {
		button = annotator.ButtonPrimary
	}
	return []annotator.PointerEvent{
		{Action: annotator.ActionMove, X: c.X, Y: c.Y},
		{Action: annotator.ActionPress, Button: button, X: c.X, Y: c.Y},
		{Action: annotator.ActionRelease, Button: button, X: c.X, Y: c.Y},
	}
}
