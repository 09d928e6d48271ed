package ui

import (
	"math"
	"strconv"
)

// Preference keys.
const (
	ThemeKey = "theme"
	TabKey   = "tab"
)

// Preferences is a client-side key-value store.
type Preferences interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// LoadState restores the persisted theme and tab, defaulting to auto and
// chat.
func LoadState(p Preferences, systemDark bool) State {
	theme := ThemeAuto
	if v, ok := p.Get(ThemeKey); ok {
		theme = ParseTheme(v)
	}
	s := NewState(theme, systemDark)
	if v, ok := p.Get(TabKey); ok {
		if tab, ok := ParseTab(v); ok {
			s.Tab = tab
		}
	}
	return s
}

// Persist applies the persistence effects of a transition.
func Persist(p Preferences, effects []Effect) {
	for _, e := range effects {
		switch e.Kind {
		case EffectPersistTheme:
			p.Set(ThemeKey, string(e.Theme))
		case EffectPersistTab:
			p.Set(TabKey, string(e.Tab))
		}
	}
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with two decimals at most, e.g. "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
