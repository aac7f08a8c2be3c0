package graph

import (
	"errors"

	"go.uber.org/zap"

	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/logger"
	"github.com/d60-Lab/journaly/pkg/monitor"
)

// Error codes reported in extensions.code.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeInternal        = "INTERNAL"
)

// Error is a resolver error carrying an extension code.
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

func codeOf(err error) string {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, service.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, service.ErrForbidden):
		return CodeForbidden
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		return CodeBadUserInput
	}
	return CodeInternal
}

// wrap converts a service error into a GraphQL error. Internal errors are logged and
// reported, and their message is not exposed.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	code := codeOf(err)
	if code == CodeInternal {
		logger.Error("graphql resolver failed", zap.Error(err))
		monitor.CaptureError(err, map[string]string{"transport": "graphql"})
		return &Error{Message: "internal server error", Code: code}
	}
	return &Error{Message: err.Error(), Code: code}
}
