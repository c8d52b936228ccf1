package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is matched by every *Error via errors.Is.
var ErrInvalid = errors.New("validation failed")

// FieldError describes one rejected field. Path uses JSON names joined by
// dots, with [i] for list elements.
type FieldError struct {
	Path    string `json:"path"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Error is returned when a document fails validation. Nothing from a
// rejected document may be persisted.
type Error struct {
	Entity string       `json:"entity"`
	Fields []FieldError `json:"fields"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Path == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Path+": "+f.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Paths returns the offending field paths in report order.
func (e *Error) Paths() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Path)
	}
	return out
}

// Has reports whether path was rejected.
func (e *Error) Has(path string) bool {
	for _, f := range e.fieldsOrNil() {
		if f.Path == path {
			return true
		}
	}
	return false
}

func (e *Error) fieldsOrNil() []FieldError {
	if e == nil {
		return nil
	}
	return e.Fields
}

func (e *Error) add(path, rule, param, msg string) {
	for _, f := range e.Fields {
		if f.Path == path && f.Rule == rule {
			return
		}
	}
	e.Fields = append(e.Fields, FieldError{Path: path, Rule: rule, Param: param, Message: msg})
}

func (e *Error) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) && ve != nil {
		return ve, true
	}
	return nil, false
}
