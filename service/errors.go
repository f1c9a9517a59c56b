package service

import (
	"errors"
	"net/http"
	"strings"
)

// Op names an adapter operation. Every failure is classified by the operation that produced it.
type Op string

const (
	OpLogin  Op = "login"
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Sentinels for errors.Is. ErrAuth is the AuthError of the login operation, the other four are
// the FetchError, CreateError, UpdateError and DeleteError of the task operations.
var (
	ErrAuth   = errors.New("invalid credentials")
	ErrFetch  = errors.New("failed to fetch tasks")
	ErrCreate = errors.New("failed to create task")
	ErrUpdate = errors.New("failed to update task")
	ErrDelete = errors.New("failed to delete task")
)

func (op Op) sentinel() error {
	switch op {
	case OpLogin:
		return ErrAuth
	case OpList:
		return ErrFetch
	case OpCreate:
		return ErrCreate
	case OpUpdate:
		return ErrUpdate
	case OpDelete:
		return ErrDelete
	}
	return nil
}

// Error is the typed failure of an adapter operation.
// Error has the following properties:
// - Op: The operation that failed.
// - StatusCode: The HTTP status of the response, 0 when no response arrived.
// - Message: The response body text when the server sent one, otherwise a default for the operation.
// - Err: The underlying transport or decoding error, if any.
type Error struct {
	Op         Op
	StatusCode int
	Message    string
	Err        error
}

// newError builds the typed error for op. body is the server's response text.
func newError(op Op, status int, body string, cause error) *Error {
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = op.sentinel().Error()
		if cause != nil {
			msg += ": " + cause.Error()
		}
	}
	return &Error{Op: op, StatusCode: status, Message: msg, Err: cause}
}

// Error returns the message shown to the user.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the failed operation.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Op.sentinel()
}

// NotFound reports whether the server rejected the operation because the task does not exist.
func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Unauthorized reports whether the server rejected the credential.
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
