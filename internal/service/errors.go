package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrAccountAlreadyExists  = errors.New("account already exists")
	ErrAccountNotFound       = errors.New("account not found")
	ErrCodeMismatch          = errors.New("verification code mismatch")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

// ValidationError reports malformed input. Fields maps the request field name
// to a human readable problem.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsClientError reports whether err is an expected outcome of bad caller
// input rather than a fault in the service or its dependencies.
func IsClientError(err error) bool {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, ErrAccountAlreadyExists),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrCodeMismatch),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidOrExpiredToken):
		return true
	default:
		return false
	}
}
