package service

import (
	"errors"
	"sort"
	"strings"

	"reviewhub/internal/http-api/permission"
)

// Error taxonomy shared by all services. Every error here is terminal for the
// current request; nothing is retried.
var (
	ErrNotFound        = errors.New("not found")
	ErrCodeMismatch    = errors.New("confirmation_code does not match")
	ErrReviewExists    = errors.New("this review already exists")
	ErrTitleExists     = errors.New("this record has already been created")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
)

// FieldErrors is a field-level validation error in the API's
// {"field": ["message"]} response shape. It covers malformed input,
// prohibited values and per-field missing-field reports.
type FieldErrors map[string][]string

const requiredMessage = "This field is required."

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// verdictError translates a permission denial into the matching sentinel.
func verdictError(v permission.Verdict) error {
	if v.Reason == permission.ReasonUnauthenticated {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

// requireFields reports every empty value as a per-field error, nil when all
// are present.
func requireFields(fields map[string]string) FieldErrors {
	var errs FieldErrors
	for name, value := range fields {
		if value == "" {
			if errs == nil {
				errs = FieldErrors{}
			}
			errs[name] = []string{requiredMessage}
		}
	}
	return errs
}
