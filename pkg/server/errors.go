package server

import "errors"

var (
	errNoInferencer    = errors.New("no inference backend configured")
	errEmptySuggestion = errors.New("model returned no characters")
)
