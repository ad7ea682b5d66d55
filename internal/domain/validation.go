package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCustomerInfo = errors.New("invalid customer info")
	ErrInvalidCardShape    = errors.New("invalid card details")
)

// Violation is one failed rule on one input field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a submission. It matches
// each kind it was built from with errors.Is.
type ValidationError struct {
	Kinds      []error
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Field+": "+v.Message)
	}
	kinds := make([]string, 0, len(e.Kinds))
	for _, k := range e.Kinds {
		kinds = append(kinds, k.Error())
	}
	return strings.Join(kinds, ", ") + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	for _, k := range e.Kinds {
		if errors.Is(k, target) {
			return true
		}
	}
	return false
}

// Merge combines validation errors, skipping nils. It returns nil when there
// is nothing to report.
func Merge(errs ...*ValidationError) *ValidationError {
	var out *ValidationError
	for _, e := range errs {
		if e == nil || len(e.Violations) == 0 {
			continue
		}
		if out == nil {
			out = &ValidationError{}
		}
		out.Kinds = append(out.Kinds, e.Kinds...)
		out.Violations = append(out.Violations, e.Violations...)
	}
	return out
}
