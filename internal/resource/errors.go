package resource

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a ClientError.
type Kind int

const (
	KindNetwork Kind = iota
	KindServer
	KindValidation
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkError"
	case KindServer:
		return "ServerError"
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFound"
	case KindUnauthorized:
		return "Unauthorized"
	default:
		return "Unknown"
	}
}

// ClientError is the only error type a Client returns.
// Status is set for KindServer; Fields is set for KindValidation.
type ClientError struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *ClientError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("]")
	}
	if e.Cause != nil && e.Message == "" {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// NetworkError reports a request that never produced an HTTP response.
func NetworkError(cause error) *ClientError {
	return &ClientError{Kind: KindNetwork, Message: "network error", Cause: cause}
}

// ServerError reports a non-success status with no more specific kind.
func ServerError(status int, message string) *ClientError {
	return &ClientError{Kind: KindServer, Status: status, Message: message}
}

// ValidationError reports field-level rejections.
func ValidationError(message string, fields map[string]string) *ClientError {
	return &ClientError{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFoundError(message string) *ClientError {
	return &ClientError{Kind: KindNotFound, Message: message}
}

func UnauthorizedError(message string) *ClientError {
	return &ClientError{Kind: KindUnauthorized, Message: message}
}

// KindOf returns the Kind of err when it is (or wraps) a ClientError.
func KindOf(err error) (Kind, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

func IsKind(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

func IsValidation(err error) bool   { return IsKind(err, KindValidation) }
func IsNotFound(err error) bool     { return IsKind(err, KindNotFound) }
func IsUnauthorized(err error) bool { return IsKind(err, KindUnauthorized) }

// FieldErrors returns the field map of a validation error, or nil.
func FieldErrors(err error) map[string]string {
	var ce *ClientError
	if errors.As(err, &ce) && ce.Kind == KindValidation {
		return ce.Fields
	}
	return nil
}

// Message returns the human readable part of err for notifications.
func Message(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
