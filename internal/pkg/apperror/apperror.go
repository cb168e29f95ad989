// Package apperror is the error taxonomy shared by the gateway, the engine and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindStorage         Kind = "storage"
	KindUpload          Kind = "upload"
	KindAnalysis        Kind = "analysis"
	KindUnknownScenario Kind = "unknown_scenario"
	KindBusy            Kind = "busy"
)

// Error carries a Kind plus an optional cause. Op names the operation that failed.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Sentinels. errors.Is(err, ErrNotFound) matches every not_found error.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrStorage         = &Error{Kind: KindStorage}
	ErrUpload          = &Error{Kind: KindUpload}
	ErrAnalysis        = &Error{Kind: KindAnalysis}
	ErrUnknownScenario = &Error{Kind: KindUnknownScenario}
	ErrBusy            = &Error{Kind: KindBusy}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string, id interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", what, id)}
}

func Storage(op string, err error) error {
	return &Error{Kind: KindStorage, Op: op, Message: "storage unavailable", Err: err}
}

func Upload(err error) error {
	return &Error{Kind: KindUpload, Message: "image upload failed", Err: err}
}

func Analysis(err error) error {
	return &Error{Kind: KindAnalysis, Message: "image analysis failed", Err: err}
}

func UnknownScenario(id string) error {
	return &Error{Kind: KindUnknownScenario, Message: fmt.Sprintf("unknown scenario %q", id)}
}

func Busy(sessionID interface{}) error {
	return &Error{Kind: KindBusy, Message: fmt.Sprintf("session %v is awaiting a reply", sessionID)}
}

// KindOf returns the kind of the first *Error in the chain, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message is the user-facing text: the outermost *Error message without its cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
