package service

import (
	"errors"
	"fmt"
)

var (
	ErrProspectNotFound   = errors.New("prospect not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailTaken         = errors.New("email already registered")
	ErrProspectExists     = errors.New("prospect already exists")
)

// ValidationError se devuelve antes de cualquier llamada al generador.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// GenerationFailure indica que el generador no devolvio un resultado estructurado valido.
// Nunca se reemplaza por un score por defecto.
type GenerationFailure struct {
	Reason string
	Err    error
}

func (e *GenerationFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failure: %s: %v", e.Reason, e.Err)
	}
	return "generation failure: " + e.Reason
}

func (e *GenerationFailure) Unwrap() error {
	return e.Err
}

func generationFailure(reason string, err error) error {
	return &GenerationFailure{Reason: reason, Err: err}
}
