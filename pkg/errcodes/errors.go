package errcodes

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// HasCode reports whether err is, or wraps, an *Error carrying the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

const (
	CodeDuplicate            = "duplicate"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeNotFound             = "not_found"
	CodeStorageUnavailable   = "storage_unavailable"
	CodeValidationError      = "validation_error"
	CodeWeakPassword         = "weak_password"
	CodeWrongCurrentPassword = "wrong_current_password"
)

// Forbidden returns a 403 error with a message indicating the action is
// forbidden.
func Forbidden(action string) error {
	return &Error{
		http.StatusForbidden,
		action + " is not allowed.",
		"forbidden",
	}
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found.",
		CodeNotFound,
	}
}

// Duplicate returns a 409 error for a unique constraint on the given field.
func Duplicate(field string) error {
	return &Error{
		http.StatusConflict,
		field + " already exists.",
		CodeDuplicate,
	}
}

func Unauthorized(msg string) error {
	return &Error{
		http.StatusUnauthorized,
		msg,
		"unauthorized",
	}
}

// InvalidCredentials is returned for every failed login, regardless of
// whether the username exists.
func InvalidCredentials() error {
	return &Error{
		http.StatusUnauthorized,
		"Invalid username or password",
		CodeInvalidCredentials,
	}
}

func WrongCurrentPassword() error {
	return &Error{
		http.StatusUnauthorized,
		"Current password is incorrect",
		CodeWrongCurrentPassword,
	}
}

func WeakPassword(minLength int) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Password must be at least %d characters", minLength),
		CodeWeakPassword,
	}
}

// StorageUnavailable wraps a failure to reach the catalog file.
func StorageUnavailable(reason string) error {
	return &Error{
		http.StatusServiceUnavailable,
		"Catalog storage is unavailable: " + reason,
		CodeStorageUnavailable,
	}
}

func TooManyRequests() error {
	return &Error{
		http.StatusTooManyRequests,
		"Too many attempts, try again shortly",
		"too_many_requests",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"Unsupported Media Type",
		"unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Unknown Parameter %q", param),
		"unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_type_error",
	}
}

func ValidationError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		CodeValidationError,
	}
}

func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"empty_request_body",
	}
}
