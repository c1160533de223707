// Package fault defines the closed error taxonomy that crosses the service
// boundary. Every collaborator failure is mapped to exactly one Kind before
// it reaches a handler; raw backend payloads never leak to clients.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one failure class.
type Kind string

const (
	InvalidRequest        Kind = "invalid_request"
	NoResults             Kind = "no_results"
	RetrievalUnavailable  Kind = "retrieval_unavailable"
	GenerationUnavailable Kind = "generation_unavailable"
	SessionNotFound       Kind = "session_not_found"
	StoreUnavailable      Kind = "store_unavailable"
)

// Error ties a Kind to the pipeline stage that produced it, so a failure can
// be diagnosed without inspecting logs.
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two faults by Kind regardless of stage, so callers can write
// errors.Is(err, fault.New(fault.SessionNotFound, "", nil)).
func (e *Error) Is(target error) bool {
	var f *Error
	if errors.As(target, &f) {
		return f.Kind == e.Kind
	}
	return false
}

// New builds a fault for the given stage. err may be nil.
func New(kind Kind, stage string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// KindOf extracts the Kind from err, or "" when err carries no fault.
func KindOf(err error) Kind {
	var f *Error
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// Status maps a Kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case InvalidRequest:
		return http.StatusBadRequest
	case NoResults, SessionNotFound:
		return http.StatusNotFound
	case RetrievalUnavailable, GenerationUnavailable, StoreUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
