// Package apperr defines the error kinds the harvester distinguishes:
// validation faults raised before any I/O, transient UI interaction faults,
// row-scoped parse faults and fatal connectivity faults. Callers match on
// the concrete type with errors.As instead of string inspection.
package apperr

import "fmt"

// ValidationError reports malformed input parameters (bad page numbers,
// bad id ranges, bad column schemas, malformed article fields). It is
// always raised before any navigation or I/O and never retried.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// InteractionError reports a UI interaction (click, wait-for-element) that
// failed after the configured number of attempts. Batch operations skip the
// affected item instead of aborting.
type InteractionError struct {
	Selector string
	Attempts int
	Err      error
}

func (e *InteractionError) Error() string {
	msg := fmt.Sprintf("interaction with %q failed after %d attempts", e.Selector, e.Attempts)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *InteractionError) Unwrap() error {
	return e.Err
}

func NewInteraction(selector string, attempts int, err error) *InteractionError {
	return &InteractionError{Selector: selector, Attempts: attempts, Err: err}
}

// ParseError reports a single listing row or script-call pattern that did
// not match expectations. It is row-scoped: the row is dropped and the
// table scan continues.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParse(msg string) *ParseError {
	return &ParseError{Message: msg}
}

func NewParseWrap(msg string, err error) *ParseError {
	return &ParseError{Message: msg, Err: err}
}

// ConnectivityError reports an unreachable collaborator (store, index,
// browser session) at startup. The dependent operations cannot proceed.
type ConnectivityError struct {
	Service string
	Err     error
}

func (e *ConnectivityError) Error() string {
	if e.Err != nil {
		return e.Service + " unreachable: " + e.Err.Error()
	}
	return e.Service + " unreachable"
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

func NewConnectivity(service string, err error) *ConnectivityError {
	return &ConnectivityError{Service: service, Err: err}
}
