package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse indica que el proveedor respondio sin contenido.
	ErrEmptyResponse = errors.New("llm empty response")
	// ErrTruncatedResponse: el proveedor corto la salida por limite de tokens.
	ErrTruncatedResponse = errors.New("llm response truncated")
)

// APIError es un rechazo explicito del proveedor (status >= 400 o campo error).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("llm http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("llm http error: status=%d: %s", e.StatusCode, e.Message)
}
