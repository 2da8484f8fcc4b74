package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-auth-shell/internal/errors"
)

// DefaultErrorMessage is used when a failed response carries no message.
const DefaultErrorMessage = "An error occurred"

// Kind classifies a failed Response.
type Kind string

const (
	KindNone          Kind = ""
	KindTransport     Kind = "transport"
	KindServer        Kind = "server"
	KindAuthExpired   Kind = "auth_expired"
	KindRefreshFailed Kind = "refresh_failed"
	KindValidationGap Kind = "validation_gap"
	KindDecode        Kind = "decode"
)

// Response is the uniform result of every gateway call. Exactly one of Data (on
// success) or Error (on failure) is meaningful.
type Response[T any] struct {
	Success    bool
	Data       T
	Error      string
	Kind       Kind
	StatusCode int
}

func OK[T any](status int, data T) Response[T] {
	return Response[T]{Success: true, Data: data, StatusCode: status}
}

func Fail[T any](kind Kind, status int, message string) Response[T] {
	if message == "" {
		message = DefaultErrorMessage
	}
	return Response[T]{Kind: kind, StatusCode: status, Error: message}
}

// Err maps a failed response onto the error taxonomy; nil on success.
func (r Response[T]) Err() error {
	if r.Success {
		return nil
	}
	var sentinel error
	switch r.Kind {
	case KindTransport:
		sentinel = errors.ErrTransport
	case KindAuthExpired:
		sentinel = errors.ErrAuthExpired
	case KindRefreshFailed:
		sentinel = errors.ErrRefreshFailed
	case KindValidationGap:
		sentinel = errors.ErrValidationGap
	case KindDecode:
		sentinel = errors.ErrDecode
	default:
		sentinel = errors.ErrServer
	}
	return fmt.Errorf("%w: %s", sentinel, r.Error)
}

// Forward carries a failure over to a response of another type.
func Forward[U, T any](r Response[T]) Response[U] {
	return Response[U]{Kind: r.Kind, StatusCode: r.StatusCode, Error: r.Error}
}

// Decode unmarshals a raw success body into T. Failures pass through unchanged.
func Decode[T any](r Response[json.RawMessage]) Response[T] {
	if !r.Success {
		return Forward[T](r)
	}
	var data T
	body := bytes.TrimSpace(r.Data)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return OK(r.StatusCode, data)
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return Fail[T](KindDecode, r.StatusCode, fmt.Sprintf("decode response: %v", err))
	}
	return OK(r.StatusCode, data)
}

// Map transforms the data of a success response; an error from fn becomes a
// decode failure.
func Map[T, U any](r Response[T], fn func(T) (U, error)) Response[U] {
	if !r.Success {
		return Forward[U](r)
	}
	u, err := fn(r.Data)
	if err != nil {
		return Fail[U](KindDecode, r.StatusCode, err.Error())
	}
	return OK(r.StatusCode, u)
}

// errorBody is the subset of a failure body the gateway reads a message from.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func failureMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
