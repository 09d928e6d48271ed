// Package display styles terminal output for the docrelay commands.
package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	infoStyle = lipgloss.NewStyle().Faint(true)
)

// Error prints the error and any additional messages.
func Error(w io.Writer, err error, msgs ...string) {
	if err == nil || err.Error() == "" {
		return
	}
	ErrorMsg(w, err.Error())
	ErrorMsg(w, msgs...)
}

func ErrorMsg(w io.Writer, msgs ...string) {
	for _, msg := range msgs {
		fmt.Fprintln(w, errorStyle.Render(msg))
	}
}

func Success(w io.Writer, msgs ...string) {
	for _, msg := range msgs {
		fmt.Fprintln(w, successStyle.Render(msg))
	}
}

func Info(w io.Writer, msgs ...string) {
	for _, msg := range msgs {
		fmt.Fprintln(w, infoStyle.Render(msg))
	}
}

// Question echoes the user's question before its streamed answer.
func Question(w io.Writer, q string) {
	fmt.Fprintln(w, questionStyle.Render("> "+q))
}
