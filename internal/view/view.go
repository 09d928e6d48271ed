// Package view renders the relay's pages and HTML fragments. Templates and
// browser assets are embedded in the binary.
package view

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"

	"docrelay/internal/models"
	"docrelay/internal/ui"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names, one per file under templates/.
const (
	AlertTemplate      = "alert.html"
	ChatTemplate       = "chat.html"
	DocumentsTemplate  = "documents.html"
	IndexTemplate      = "index.html"
	ProbeTemplate      = "probe.html"
	ThemeTemplate      = "theme.html"
	SSEDemoTemplate    = "demo_sse.html"
	SocketDemoTemplate = "demo_ws.html"
)

var funcs = template.FuncMap{
	"idleButton": func(form string) ui.Button { return ui.IdleButton(ui.Form(form)) },
	"activeTab":  func(s ui.State, name string) bool { return string(s.Tab) == name },
	"fileSize":   ui.FormatFileSize,
	"loading":    func(form string) Loading { return NewLoading(ui.Form(form)) },
}

// Templates parses every embedded template. html/template escapes all
// interpolated values, including backend answers.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Static returns the browser assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelDanger  Level = "danger"
	LevelInfo    Level = "info"
)

// Alert is a one-line status fragment.
type Alert struct {
	Level   Level
	Message string
}

func (a Alert) Icon() string {
	switch a.Level {
	case LevelSuccess:
		return "bi bi-check-circle-fill"
	case LevelInfo:
		return "bi bi-info-circle-fill"
	default:
		return "bi bi-exclamation-triangle-fill"
	}
}

func Success(format string, args ...any) Alert {
	return Alert{Level: LevelSuccess, Message: fmt.Sprintf(format, args...)}
}

func Danger(format string, args ...any) Alert {
	return Alert{Level: LevelDanger, Message: fmt.Sprintf(format, args...)}
}

func Info(message string) Alert {
	return Alert{Level: LevelInfo, Message: message}
}

// ChatPair is one question with its answer.
type ChatPair struct {
	Question string
	Answer   string
}

type DocumentCard struct {
	Number int
	Title  string
	Type   string
	Size   string
}

type Documents struct {
	Cards []DocumentCard
}

// NewDocuments numbers the summaries from 1 and applies the display fallbacks.
func NewDocuments(docs []models.DocumentSummary) Documents {
	cards := make([]DocumentCard, 0, len(docs))
	for i, d := range docs {
		cards = append(cards, DocumentCard{
			Number: i + 1,
			Title:  d.TitleLabel(i + 1),
			Type:   d.TypeLabel(),
			Size:   d.SizeLabel(),
		})
	}
	return Documents{Cards: cards}
}

// Loading carries an upload form's busy and idle renderings into data
// attributes, so the page swaps labels without knowing them.
type Loading struct {
	Busy       ui.Button
	BusyStatus string
	Idle       ui.Button
	DoneStatus string
}

func NewLoading(f ui.Form) Loading {
	busyState, busy := ui.State{}.BeginLoading(f)
	doneState, idle := busyState.EndLoading(f)
	return Loading{
		Busy:       busy,
		BusyStatus: busyState.Status,
		Idle:       idle,
		DoneStatus: doneState.Status,
	}
}

// Page is the tabbed shell.
type Page struct {
	State     ui.State
	Tabs      []ui.Tab
	Shortcuts []ui.Shortcut
	// Keymap is the JSON list of key bindings the page reports to the relay.
	Keymap    string
	MaxUpload int64
	// NetworkError and ResponseError are the toasts for failed requests.
	NetworkError  string
	ResponseError string
}

func NewPage(state ui.State, maxUpload int64) Page {
	keymap, err := json.Marshal(ui.Keymap())
	if err != nil {
		keymap = []byte("[]")
	}
	return Page{
		State:         state,
		Tabs:          ui.Tabs,
		Shortcuts:     ui.Shortcuts(),
		Keymap:        string(keymap),
		MaxUpload:     maxUpload,
		NetworkError:  firstMessage(state.RequestFailed(true)),
		ResponseError: firstMessage(state.RequestFailed(false)),
	}
}

func firstMessage(effects []ui.Effect) string {
	for _, e := range effects {
		if e.Message != "" {
			return e.Message
		}
	}
	return ""
}

// Demo is a standalone streaming chat page.
type Demo struct {
	Title    string
	Endpoint string
}
