package ui

import (
	"fmt"
	"strconv"
)

// Key is a keydown event as seen by the page.
type Key struct {
	Key  string
	Ctrl bool
	Meta bool
	// TargetTag is the lower-case tag name of the focused element.
	TargetTag string
	// TargetName is the focused element's name attribute.
	TargetName string
}

func (k Key) inTextField() bool {
	return k.TargetTag == "input" || k.TargetTag == "textarea"
}

// KeyBinding is the match half of a shortcut. The page receives the bindings
// as JSON so it knows which keydowns to suppress and report.
type KeyBinding struct {
	Key string `json:"key"`
	// Mod requires Ctrl or Cmd.
	Mod bool `json:"mod,omitempty"`
	// OutsideText skips the binding while an input or textarea has focus.
	OutsideText bool `json:"outside_text,omitempty"`
	// Field limits the binding to the element with this name.
	Field string `json:"field,omitempty"`
}

// Matches reports whether k triggers the binding.
func (b KeyBinding) Matches(k Key) bool {
	switch {
	case b.Key != k.Key:
		return false
	case b.Mod && !k.Ctrl && !k.Meta:
		return false
	case b.OutsideText && k.inTextField():
		return false
	case b.Field != "" && b.Field != k.TargetName:
		return false
	}
	return true
}

type binding struct {
	KeyBinding
	// label and action document the binding; aliases leave them empty.
	label  string
	action string
	apply  func(State) (State, []Effect)
}

var bindings = buildBindings()

func buildBindings() []binding {
	out := make([]binding, 0, len(Tabs)+3)
	for i, t := range Tabs {
		out = append(out, binding{
			KeyBinding: KeyBinding{Key: strconv.Itoa(i + 1), Mod: true},
			label:      fmt.Sprintf("Ctrl+%d", i+1),
			action:     "Open " + t.Title(),
			apply:      func(s State) (State, []Effect) { return s.SwitchTab(t) },
		})
	}
	cycle := func(s State) (State, []Effect) { return s.CycleTheme() }
	return append(out,
		binding{KeyBinding: KeyBinding{Key: "t", OutsideText: true}, label: "T", action: "Cycle theme", apply: cycle},
		binding{KeyBinding: KeyBinding{Key: "T", OutsideText: true}, apply: cycle},
		binding{
			KeyBinding: KeyBinding{Key: "Enter", Field: "question"},
			label:      "Enter",
			action:     "Send question",
			apply: func(s State) (State, []Effect) {
				return s, []Effect{{Kind: EffectSubmitForm}}
			},
		},
	)
}

// Keymap lists every binding HandleKey consumes.
func Keymap() []KeyBinding {
	out := make([]KeyBinding, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, b.KeyBinding)
	}
	return out
}

// Shortcut documents one keyboard binding.
type Shortcut struct {
	Keys   string
	Action string
}

// Shortcuts lists the bindings for display.
func Shortcuts() []Shortcut {
	out := make([]Shortcut, 0, len(bindings))
	for _, b := range bindings {
		if b.label != "" {
			out = append(out, Shortcut{Keys: b.label, Action: b.action})
		}
	}
	return out
}

// HandleKey dispatches a keydown. The bool result reports whether the key was
// consumed and the browser default should be suppressed.
func (s State) HandleKey(k Key) (State, []Effect, bool) {
	for _, b := range bindings {
		if b.Matches(k) {
			next, effects := b.apply(s)
			return next, effects, true
		}
	}
	return s, nil, false
}
