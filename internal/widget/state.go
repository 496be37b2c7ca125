package widget

import (
	"errors"
	"fmt"
)

// ViewState is the panel currently selected in the widget.
type ViewState int

const (
	StateDisplay ViewState = iota
	StateConfiguration
)

func (s ViewState) String() string {
	switch s {
	case StateDisplay:
		return "display"
	case StateConfiguration:
		return "configuration"
	default:
		return fmt.Sprintf("ViewState(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s ViewState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Trigger names a user action that may change the ViewState.
type Trigger string

const (
	TriggerToggle Trigger = "toggle"
	TriggerSave   Trigger = "save"
)

// ErrInvalidTransition is returned when a trigger is not accepted in the current state.
var ErrInvalidTransition = errors.New("invalid transition")

// transitions is the complete state machine. Anything missing here is rejected.
var transitions = map[ViewState]map[Trigger]ViewState{
	StateDisplay: {
		TriggerToggle: StateConfiguration,
	},
	StateConfiguration: {
		TriggerToggle: StateDisplay,
		TriggerSave:   StateDisplay,
	},
}

// next returns the state reached from s on t.
func next(s ViewState, t Trigger) (ViewState, error) {
	to, ok := transitions[s][t]
	if !ok {
		return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, t, s)
	}
	return to, nil
}

// Toggle glyphs shown on the toggle control.
const (
	GlyphClosed = "●"
	GlyphOpen   = "✕"
)

// Panel describes one of the two views. Visible mirrors whether the
// container is laid out at all; Hidden mirrors the faded-out class used for
// the transition.
type Panel struct {
	Visible bool `json:"visible"`
	Hidden  bool `json:"hidden"`
}

// Classes returns the CSS class list for the panel container.
func (p Panel) Classes() string {
	switch {
	case !p.Visible:
		return "panel gone hidden"
	case p.Hidden:
		return "panel hidden"
	default:
		return "panel"
	}
}
