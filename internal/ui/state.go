// Package ui holds the relay page's interaction state as a plain value with
// pure transition functions. Each transition returns the next State plus the
// side effects the page has to perform; nothing here touches a DOM.
package ui

import (
	"fmt"
	"strings"
	"time"
)

type Tab string

const (
	TabChat   Tab = "chat"
	TabUpload Tab = "upload"
	TabAdmin  Tab = "admin"
)

// Tabs lists the tabs in display order; shortcut digits index into it.
var Tabs = []Tab{TabChat, TabUpload, TabAdmin}

func ParseTab(s string) (Tab, bool) {
	for _, t := range Tabs {
		if string(t) == strings.ToLower(strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// Title is the tab's display name.
func (t Tab) Title() string {
	switch t {
	case TabChat:
		return "Chat"
	case TabUpload:
		return "Upload"
	case TabAdmin:
		return "Admin"
	}
	return string(t)
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

var themeCycle = []Theme{ThemeLight, ThemeDark, ThemeAuto}

// ParseTheme maps a stored preference to a theme; anything unknown is auto.
func ParseTheme(s string) Theme {
	for _, t := range themeCycle {
		if string(t) == s {
			return t
		}
	}
	return ThemeAuto
}

// Next is the theme after t in the light, dark, auto cycle.
func (t Theme) Next() Theme {
	for i, candidate := range themeCycle {
		if candidate == t {
			return themeCycle[(i+1)%len(themeCycle)]
		}
	}
	return ThemeLight
}

func (t Theme) Label() string {
	switch t {
	case ThemeLight:
		return "Light"
	case ThemeDark:
		return "Dark"
	default:
		return "Auto"
	}
}

// Icon is the bootstrap-icons class shown on the theme toggle.
func (t Theme) Icon() string {
	switch t {
	case ThemeLight:
		return "bi bi-sun-fill"
	case ThemeDark:
		return "bi bi-moon-fill"
	default:
		return "bi bi-circle-half"
	}
}

// Scheme is the color scheme actually in effect.
type Scheme string

const (
	SchemeLight Scheme = "light"
	SchemeDark  Scheme = "dark"
)

type Connectivity int

const (
	ConnectivityUnknown Connectivity = iota
	ConnectivityOnline
	ConnectivityIssues
)

func (c Connectivity) Label() string {
	switch c {
	case ConnectivityOnline:
		return "Backend Online"
	case ConnectivityIssues:
		return "Backend Issues"
	default:
		return "Checking backend..."
	}
}

// Indicator is the text color class of the header dot.
func (c Connectivity) Indicator() string {
	switch c {
	case ConnectivityOnline:
		return "text-success"
	case ConnectivityIssues:
		return "text-warning"
	default:
		return "text-secondary"
	}
}

type EffectKind int

const (
	EffectRefreshDocuments EffectKind = iota + 1
	EffectFocusQuestion
	EffectPersistTheme
	EffectApplyTheme
	EffectNotify
	EffectSubmitForm
	EffectPersistTab
)

var effectNames = map[EffectKind]string{
	EffectRefreshDocuments: "refreshDocuments",
	EffectFocusQuestion:    "focusQuestion",
	EffectPersistTheme:     "persistTheme",
	EffectApplyTheme:       "applyTheme",
	EffectNotify:           "notify",
	EffectSubmitForm:       "submitForm",
	EffectPersistTab:       "persistTab",
}

// String is the name the browser script dispatches on.
func (k EffectKind) String() string {
	if name, ok := effectNames[k]; ok {
		return name
	}
	return fmt.Sprintf("effect(%d)", int(k))
}

// Persistent reports whether the effect is applied by the server rather
// than the page.
func (k EffectKind) Persistent() bool {
	return k == EffectPersistTheme || k == EffectPersistTab
}

const focusDelay = 100 * time.Millisecond

// Effect is a side effect requested by a transition.
type Effect struct {
	Kind    EffectKind
	Tab     Tab
	Theme   Theme
	Scheme  Scheme
	Message string
	Level   string
	Delay   time.Duration
}

func notify(message, level string) Effect {
	return Effect{Kind: EffectNotify, Message: message, Level: level}
}

// State is the page state. The zero value is not ready for use; build one
// with NewState or LoadState.
type State struct {
	Tab        Tab
	Theme      Theme
	SystemDark bool
	Loading    Form
	Status     string
	StatusBusy bool
	Backend    Connectivity
}

func NewState(theme Theme, systemDark bool) State {
	return State{
		Tab:        TabChat,
		Theme:      theme,
		SystemDark: systemDark,
	}
}

// EffectiveScheme resolves auto against the OS preference.
func (s State) EffectiveScheme() Scheme {
	switch s.Theme {
	case ThemeDark:
		return SchemeDark
	case ThemeLight:
		return SchemeLight
	}
	if s.SystemDark {
		return SchemeDark
	}
	return SchemeLight
}

// SwitchTab shows exactly one tab.
func (s State) SwitchTab(t Tab) (State, []Effect) {
	if _, ok := ParseTab(string(t)); !ok {
		return s, nil
	}
	s.Tab = t
	s.Status = fmt.Sprintf("Switched to %s tab", t)
	s.StatusBusy = false

	effects := []Effect{{Kind: EffectPersistTab, Tab: t}}
	switch t {
	case TabAdmin:
		effects = append(effects, Effect{Kind: EffectRefreshDocuments})
	case TabChat:
		effects = append(effects, Effect{Kind: EffectFocusQuestion, Delay: focusDelay})
	}
	return s, effects
}

// SetTheme activates and persists a theme.
func (s State) SetTheme(t Theme) (State, []Effect) {
	s.Theme = ParseTheme(string(t))
	s.Status = s.themeStatus()
	s.StatusBusy = false
	return s, []Effect{
		{Kind: EffectPersistTheme, Theme: s.Theme},
		{Kind: EffectApplyTheme, Theme: s.Theme, Scheme: s.EffectiveScheme()},
	}
}

// CycleTheme advances light, dark, auto and announces the change.
func (s State) CycleTheme() (State, []Effect) {
	next, effects := s.SetTheme(s.Theme.Next())
	return next, append(effects, notify(fmt.Sprintf("Theme switched to %s", next.Theme), "info"))
}

// SystemSchemeChanged records a new OS color preference. Only auto reacts.
func (s State) SystemSchemeChanged(dark bool) (State, []Effect) {
	s.SystemDark = dark
	if s.Theme != ThemeAuto {
		return s, nil
	}
	s.Status = s.themeStatus()
	return s, []Effect{{Kind: EffectApplyTheme, Theme: s.Theme, Scheme: s.EffectiveScheme()}}
}

func (s State) themeStatus() string {
	return fmt.Sprintf("Theme: %s (%s mode active)", s.Theme, s.EffectiveScheme())
}

// Probe records the result of the backend connectivity check.
func (s State) Probe(ok bool) State {
	if ok {
		s.Backend = ConnectivityOnline
		s.Status = "Connected to backend"
	} else {
		s.Backend = ConnectivityIssues
		s.Status = "Backend connection issues"
	}
	s.StatusBusy = false
	return s
}

// AfterRequest runs once a fragment request completes. Upload requests
// refresh the document list while the admin tab is showing.
func (s State) AfterRequest(path string) []Effect {
	if strings.Contains(path, "/upload") && s.Tab == TabAdmin {
		return []Effect{{Kind: EffectRefreshDocuments}}
	}
	return nil
}

// RequestFailed reports a transport failure. network distinguishes a send
// error from an error response.
func (s State) RequestFailed(network bool) []Effect {
	if network {
		return []Effect{notify("Network error. Please try again.", "danger")}
	}
	return []Effect{notify("Request failed. Please check your connection.", "danger")}
}
