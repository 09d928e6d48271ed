package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docrelay/internal/ui"
	"docrelay/internal/view"
)

const (
	prefCookiePrefix = "docrelay_"
	prefCookieMaxAge = 365 * 24 * 60 * 60

	// colorSchemeHint is the client hint browsers send once asked via
	// Accept-CH.
	colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"
)

// cookiePreferences keeps UI preferences in the browser as cookies.
type cookiePreferences struct {
	c *gin.Context
}

func (p cookiePreferences) Get(key string) (string, bool) {
	v, err := p.c.Cookie(prefCookiePrefix + key)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (p cookiePreferences) Set(key, value string) {
	setCookie(p.c, &http.Cookie{
		Name:     prefCookiePrefix + key,
		Value:    value,
		MaxAge:   prefCookieMaxAge,
		Path:     "/",
		Secure:   gin.Mode() == gin.ReleaseMode && p.c.Request.TLS != nil,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func setCookie(c *gin.Context, ck *http.Cookie) {
	if ck == nil {
		return
	}
	http.SetCookie(c.Writer, ck)
}

func (h *Handler) loadState(c *gin.Context) ui.State {
	c.Header("Accept-CH", colorSchemeHint)
	return ui.LoadState(cookiePreferences{c}, c.GetHeader(colorSchemeHint) == "dark")
}

func (h *Handler) index(c *gin.Context) {
	state := h.loadState(c)
	if tab, ok := ui.ParseTab(c.Query("tab")); ok {
		var effects []ui.Effect
		state, effects = state.SwitchTab(tab)
		ui.Persist(cookiePreferences{c}, effects)
	}
	state.Status = "Ready"
	c.HTML(http.StatusOK, view.IndexTemplate, view.NewPage(state, h.stager.MaxBytes()))
}

// uiUpdate is the HX-Trigger payload announcing a state transition. The page
// applies the state and runs the effects in order.
type uiUpdate struct {
	Tab        ui.Tab     `json:"tab"`
	Theme      ui.Theme   `json:"theme"`
	ThemeLabel string     `json:"theme_label"`
	ThemeIcon  string     `json:"theme_icon"`
	Scheme     ui.Scheme  `json:"scheme"`
	Status     string     `json:"status,omitempty"`
	Busy       bool       `json:"busy,omitempty"`
	Effects    []uiEffect `json:"effects,omitempty"`
}

type uiEffect struct {
	Kind    string    `json:"kind"`
	Theme   ui.Theme  `json:"theme,omitempty"`
	Scheme  ui.Scheme `json:"scheme,omitempty"`
	Message string    `json:"message,omitempty"`
	Level   string    `json:"level,omitempty"`
	DelayMS int64     `json:"delay_ms,omitempty"`
}

// sendUpdate applies the persistent effects as cookies and hands the rest to
// the page through an HX-Trigger "uiUpdate" event.
func (h *Handler) sendUpdate(c *gin.Context, state ui.State, effects []ui.Effect) {
	ui.Persist(cookiePreferences{c}, effects)
	ev := uiUpdate{
		Tab:        state.Tab,
		Theme:      state.Theme,
		ThemeLabel: state.Theme.Label(),
		ThemeIcon:  state.Theme.Icon(),
		Scheme:     state.EffectiveScheme(),
		Status:     state.Status,
		Busy:       state.StatusBusy,
	}
	for _, e := range effects {
		if e.Kind.Persistent() {
			continue
		}
		ev.Effects = append(ev.Effects, uiEffect{
			Kind:    e.Kind.String(),
			Theme:   e.Theme,
			Scheme:  e.Scheme,
			Message: e.Message,
			Level:   e.Level,
			DelayMS: e.Delay.Milliseconds(),
		})
	}
	trigger, err := json.Marshal(map[string]uiUpdate{uiUpdateEvent: ev})
	if err != nil {
		requestLogger(c, h.log).Error("encode ui update", "error", err)
		return
	}
	c.Header("HX-Trigger", string(trigger))
}

const uiUpdateEvent = "uiUpdate"

// cycleTheme advances the stored theme and returns the new toggle.
func (h *Handler) cycleTheme(c *gin.Context) {
	state, effects := h.loadState(c).CycleTheme()
	h.sendUpdate(c, state, effects)
	c.HTML(http.StatusOK, view.ThemeTemplate, state)
}

func (h *Handler) switchTab(c *gin.Context) {
	tab, ok := ui.ParseTab(c.PostForm("tab"))
	if !ok {
		renderAlert(c, http.StatusBadRequest, view.Danger("Unknown tab %q.", c.PostForm("tab")))
		return
	}
	state, effects := h.loadState(c).SwitchTab(tab)
	h.sendUpdate(c, state, effects)
	c.Status(http.StatusNoContent)
}

type keyRequest struct {
	Key  string `form:"key"`
	Ctrl bool   `form:"ctrl"`
	Meta bool   `form:"meta"`
	Tag  string `form:"tag"`
	Name string `form:"name"`
}

// pressKey runs a keydown the page matched against the keymap.
func (h *Handler) pressKey(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBind(&req); err != nil {
		requestLogger(c, h.log).Debug("bind key event", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}
	state, effects, handled := h.loadState(c).HandleKey(ui.Key{
		Key:        req.Key,
		Ctrl:       req.Ctrl,
		Meta:       req.Meta,
		TargetTag:  strings.ToLower(req.Tag),
		TargetName: req.Name,
	})
	if handled {
		h.sendUpdate(c, state, effects)
	}
	c.Status(http.StatusNoContent)
}

// schemeChanged records an OS color scheme switch reported by the page.
func (h *Handler) schemeChanged(c *gin.Context) {
	state, effects := h.loadState(c).SystemSchemeChanged(c.PostForm("dark") == "true")
	h.sendUpdate(c, state, effects)
	c.Status(http.StatusNoContent)
}

// afterUpload announces what the page should do once an upload completes.
func (h *Handler) afterUpload(c *gin.Context) {
	state := h.loadState(c)
	if effects := state.AfterRequest(c.Request.URL.Path); len(effects) > 0 {
		h.sendUpdate(c, state, effects)
	}
	c.Next()
}

// backendStatus probes the backend with a document listing.
func (h *Handler) backendStatus(c *gin.Context) {
	_, err := h.backend.ListDocuments(c.Request.Context())
	if err != nil {
		requestLogger(c, h.log).Warn("backend connectivity check failed", "error", err)
	}
	c.HTML(http.StatusOK, view.ProbeTemplate, h.loadState(c).Probe(err == nil))
}

func (h *Handler) sseDemo(c *gin.Context) {
	c.HTML(http.StatusOK, view.SSEDemoTemplate, view.Demo{Title: "Streaming chat (event stream)", Endpoint: h.streamURL})
}

func (h *Handler) socketDemo(c *gin.Context) {
	c.HTML(http.StatusOK, view.SocketDemoTemplate, view.Demo{Title: "Streaming chat (WebSocket)", Endpoint: h.socketURL})
}

func (h *Handler) healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
