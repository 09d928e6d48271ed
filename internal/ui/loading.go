package ui

// Form identifies an upload form with a loading affordance.
type Form string

const (
	FormPDF  Form = "pdf"
	FormText Form = "text"
)

// Button is the rendered state of a form's submit button.
type Button struct {
	Disabled bool
	Spinner  bool
	Label    string
}

// IdleButton is the button's original label.
func IdleButton(f Form) Button {
	switch f {
	case FormPDF:
		return Button{Label: "Upload PDF"}
	case FormText:
		return Button{Label: "Upload Text"}
	default:
		return Button{Label: "Upload"}
	}
}

// BeginLoading disables the form's submit button behind a spinner.
func (s State) BeginLoading(f Form) (State, Button) {
	s.Loading = f
	s.Status = "Uploading file..."
	s.StatusBusy = true
	return s, Button{Disabled: true, Spinner: true, Label: "Uploading..."}
}

// EndLoading restores the button label.
func (s State) EndLoading(f Form) (State, Button) {
	if s.Loading == f {
		s.Loading = ""
	}
	s.Status = "Upload completed"
	s.StatusBusy = false
	return s, IdleButton(f)
}
