package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tazhibayda/mylist-service/internal/apperror"
	"github.com/tazhibayda/mylist-service/internal/log"
)

type errorResp struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusOf maps an error kind to its HTTP status and machine-readable code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrAuthentication):
		return http.StatusUnauthorized, "authentication_failed"
	case errors.Is(err, apperror.ErrToken):
		return http.StatusUnauthorized, "token_" + string(apperror.ReasonOf(err))
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrCapacity):
		return http.StatusConflict, "capacity_reached"
	case errors.Is(err, apperror.ErrMutation):
		return http.StatusInternalServerError, "mutation_failed"
	}
	return http.StatusInternalServerError, "internal_error"
}

// abortWithError writes the error response. Anything unclassified or
// server-side is logged with its raw cause and answered with a generic message.
func abortWithError(c *gin.Context, logger *zap.Logger, err error) {
	status, code := statusOf(err)
	msg := apperror.MessageOf(err)
	if status >= http.StatusInternalServerError {
		if logger == nil {
			logger = zap.L()
		}
		log.WithDD(c.Request.Context(), logger,
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("route", c.FullPath()),
		).Error("request failed", zap.Error(err))
		if msg == "" {
			msg = "internal error"
		}
	}
	c.AbortWithStatusJSON(status, errorResp{Error: code, Message: msg})
}

// bindError turns a gin binding failure into a validation error naming the offending fields.
func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		parts := make([]string, 0, len(ve))
		for _, fe := range ve {
			parts = append(parts, fmt.Sprintf("%s failed '%s'", fe.Field(), fe.Tag()))
		}
		return apperror.ValidationFailed(ve[0].Field(), "invalid request: "+strings.Join(parts, ", "))
	}
	return apperror.ValidationFailed("body", "invalid json")
}
