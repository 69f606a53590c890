package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"seo_content_studio/fetcher"
	"seo_content_studio/generator"
	apperrors "seo_content_studio/pkg/errors"
)

// Response is the success envelope.
type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

type ErrorDetail struct {
	ErrorCode string `json:"error_code,omitempty"`
	Details   string `json:"details,omitempty"`
}

// ErrorResponse is the failure envelope. For parse failures Details carries
// the raw provider text.
type ErrorResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

func success[T any](c *gin.Context, data T) {
	respond(c, http.StatusOK, "success", data)
}

func created[T any](c *gin.Context, data T) {
	respond(c, http.StatusCreated, "created", data)
}

func respond[T any](c *gin.Context, status int, message string, data T) {
	c.JSON(status, Response[T]{
		Code:    status,
		Message: message,
		Data:    data,
		TraceID: c.GetString("trace_id"),
	})
}

// fail converts err to its user-facing form and writes it.
func fail(c *gin.Context, err error) {
	appErr := classify(err)
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Code:    appErr.HTTPStatus,
		Message: appErr.Message,
		Error: &ErrorDetail{
			ErrorCode: string(appErr.Code),
			Details:   appErr.Detail,
		},
		TraceID: c.GetString("trace_id"),
	})
}

// classify maps domain errors onto AppErrors.
func classify(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var parseErr *generator.ParseError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return apperrors.Wrap(err, apperrors.CodeNotFound, "session not found")
	case errors.Is(err, ErrRouteNotFound):
		return apperrors.Wrap(err, apperrors.CodeNotFound, "not found")
	case errors.Is(err, generator.ErrValidation):
		return apperrors.Wrap(err, apperrors.CodeInvalidParam, err.Error())
	case errors.Is(err, generator.ErrConfiguration):
		return apperrors.Wrap(err, apperrors.CodeNotConfigured,
			"no API key is configured; set the provider key in the environment or the secrets file and restart")
	case errors.As(err, &parseErr):
		return apperrors.Wrap(err, apperrors.CodeParseFailed, parseErr.Error()).WithDetail(parseErr.Raw)
	case errors.Is(err, generator.ErrProvider):
		return apperrors.Wrap(err, apperrors.CodeGenerationFailed, err.Error())
	case errors.Is(err, generator.ErrFetch), errors.Is(err, fetcher.ErrNetwork), errors.Is(err, fetcher.ErrInvalidURL):
		return apperrors.Wrap(err, apperrors.CodeFetchFailed, err.Error())
	default:
		return apperrors.Wrap(err, apperrors.CodeInternalError, "internal server error")
	}
}
