package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	lifecycledomain "github.com/franqia/console/internal/lifecycle/domain"
	reportingdomain "github.com/franqia/console/internal/reporting/domain"
	schooldomain "github.com/franqia/console/internal/school/domain"
	subscriptiondomain "github.com/franqia/console/internal/subscription/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError projects domain errors onto the five outward classifications:
// not_found, invalid_argument, invalid_transition, precondition_failed and
// forbidden. Anything unrecognized is an internal error.
func mapError(err error) (int, errorPayload) {
	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    err.Error(),
			Message: "entity not found",
		}
	case isInvalidArgumentError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_argument",
			Code:    err.Error(),
			Message: "invalid request argument",
		}
	case errors.Is(err, lifecycledomain.ErrInvalidTransition):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_transition",
			Code:    err.Error(),
			Message: "action is not legal from the entity's current status",
		}
	case errors.Is(err, lifecycledomain.ErrConfirmationRequired):
		return http.StatusPreconditionFailed, errorPayload{
			Type:    "precondition_failed",
			Code:    err.Error(),
			Message: "explicit confirmation is required for this action",
		}
	case errors.Is(err, lifecycledomain.ErrJustificationMissing):
		return http.StatusPreconditionFailed, errorPayload{
			Type:    "precondition_failed",
			Code:    err.Error(),
			Message: "a non-empty justification is required for this action",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "admin capability required",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, franchisordomain.ErrNotFound),
		errors.Is(err, schooldomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isInvalidArgumentError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, franchisordomain.ErrInvalidName),
		errors.Is(err, schooldomain.ErrInvalidName),
		errors.Is(err, schooldomain.ErrFranchisorRequired),
		errors.Is(err, schooldomain.ErrInvalidPeriod),
		errors.Is(err, subscriptiondomain.ErrInvalidPlan),
		errors.Is(err, subscriptiondomain.ErrSchoolRequired),
		errors.Is(err, lifecycledomain.ErrUnknownEntityKind),
		errors.Is(err, lifecycledomain.ErrInvalidAction),
		errors.Is(err, lifecycledomain.ErrInvalidReason),
		errors.Is(err, reportingdomain.ErrInvalidRange),
		errors.Is(err, reportingdomain.ErrUnsupportedMetric),
		errors.Is(err, reportingdomain.ErrUnsupportedSort),
		errors.Is(err, reportingdomain.ErrUnsupportedStatus):
		return true
	default:
		return false
	}
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	return payload.Type, payload.Code
}
