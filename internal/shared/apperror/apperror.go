package apperror

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindBusinessRule
	KindInvalidID
	KindUnavailable
)

const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeInvalidID   = "INVALID_ID"
	CodeInternal    = "INTERNAL_ERROR"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
)

// FieldError is a single violated field rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// =====================================================
// ERROR TYPE
// =====================================================
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by code so that freshly built errors with a
// dynamic message still satisfy errors.Is against the declared value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// HTTPStatus maps the error kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindBusinessRule, KindInvalidID:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithMessage returns a copy carrying a different message and the same code.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// Wrap returns a copy carrying the underlying cause.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func BusinessRule(code, message string) *Error {
	return New(KindBusinessRule, code, message)
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Code: CodeUnavailable, Message: message, Err: err}
}

// InvalidID is returned for path identifiers that do not parse.
func InvalidID() *Error {
	return New(KindInvalidID, CodeInvalidID, "Invalid ID format")
}

// Validation builds an aggregated validation error. A single field
// message can be produced by passing a plain error.
func Validation(err error) *Error {
	fields := Flatten(err)
	return &Error{
		Kind:    KindValidation,
		Code:    CodeValidation,
		Message: "Validation Error",
		Fields:  fields,
		Err:     err,
	}
}

// Invalid is a validation error carrying one message and no field path.
func Invalid(message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeValidation,
		Message: message,
		Fields:  []FieldError{{Message: message}},
	}
}

// Flatten turns nested ozzo validation errors into a list sorted by
// field path. Slice indexes and nested structs use dot notation.
func Flatten(err error) []FieldError {
	if err == nil {
		return nil
	}
	var out []FieldError
	flatten("", err, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func flatten(prefix string, err error, out *[]FieldError) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for key, child := range verrs {
			if child == nil {
				continue
			}
			flatten(join(prefix, key), child, out)
		}
		return
	}
	*out = append(*out, FieldError{Field: prefix, Message: err.Error()})
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.Join([]string{prefix, key}, ".")
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}
