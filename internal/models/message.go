package models

import (
	"errors"
	"strings"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrEmptyText     = errors.New("text is empty")
)

// NormalizeQuestion trims the raw question and rejects blank input.
func NormalizeQuestion(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return "", ErrEmptyQuestion
	}
	return q, nil
}

// NormalizeText trims direct-upload text and rejects blank input.
func NormalizeText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}
