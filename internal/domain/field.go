package domain

import "sort"

// FieldID identifies a form field
type FieldID string

const (
	FieldPassword FieldID = "password"
	FieldConfirm  FieldID = "confirm"
	FieldLogin    FieldID = "login"
)

// ErrorKind is a validation error attached to a field or to the whole form
type ErrorKind string

const (
	ErrorRequired     ErrorKind = "required"
	ErrorNotMatch     ErrorKind = "notMatch"
	ErrorTooLong      ErrorKind = "tooLong"
	ErrorUnauthorized ErrorKind = "unauthorized"
)

// Errors is a set of validation errors
type Errors map[ErrorKind]struct{}

// NewErrors builds a set from the given kinds
func NewErrors(kinds ...ErrorKind) Errors {
	errs := make(Errors, len(kinds))
	for _, k := range kinds {
		errs[k] = struct{}{}
	}
	return errs
}

// Has reports whether kind is in the set
func (e Errors) Has(kind ErrorKind) bool {
	_, ok := e[kind]
	return ok
}

// Empty reports whether the set has no errors
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Kinds returns the errors in stable order
func (e Errors) Kinds() []ErrorKind {
	kinds := make([]ErrorKind, 0, len(e))
	for k := range e {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// FieldState is a snapshot of a single field
type FieldState struct {
	Value    *string
	Errors   Errors
	Disabled bool
}

// StringValue returns the value or empty string when absent
func (s FieldState) StringValue() string {
	if s.Value == nil {
		return ""
	}
	return *s.Value
}

// Ptr returns a pointer to s, for building present field values
func Ptr(s string) *string {
	return &s
}
