package pricing

import (
	"strings"
)

// Field error codes.
const (
	CodeRequired         = "required"
	CodeTooShort         = "too_short"
	CodeTooLong          = "too_long"
	CodeInvalidFormat    = "invalid_format"
	CodePriceOutOfBounds = "price_out_of_bounds"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError is returned by Result.Err when at least one field failed.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the given field failed with the given code.
func (e *ValidationError) Has(field, code string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Code == code {
			return true
		}
	}
	return false
}

// Result is the outcome of a validator: OK when Errors is empty.
type Result struct {
	Errors []FieldError
}

func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	fields := make([]FieldError, len(r.Errors))
	copy(fields, r.Errors)
	return &ValidationError{Fields: fields}
}

func (r Result) Merge(other Result) Result {
	merged := make([]FieldError, 0, len(r.Errors)+len(other.Errors))
	merged = append(merged, r.Errors...)
	merged = append(merged, other.Errors...)
	return Result{Errors: merged}
}

// Field returns the first error recorded for name.
func (r Result) Field(name string) (FieldError, bool) {
	for _, f := range r.Errors {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}

func (r *Result) add(field, code, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Code: code, Message: message})
}
