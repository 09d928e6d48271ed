package display

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	var buf bytes.Buffer
	Error(&buf, errors.New("boom"), "try again")
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "try again")

	buf.Reset()
	Error(&buf, nil, "ignored")
	assert.Empty(t, buf.String())
}

func TestQuestion(t *testing.T) {
	var buf bytes.Buffer
	Question(&buf, "why?")
	assert.Contains(t, buf.String(), "> why?")
}

func TestSuccessAndInfo(t *testing.T) {
	var buf bytes.Buffer
	Success(&buf, "2 answered.")
	Info(&buf, "one per line", "second")
	assert.Contains(t, buf.String(), "2 answered.")
	assert.Contains(t, buf.String(), "one per line")
	assert.Contains(t, buf.String(), "second")
}
