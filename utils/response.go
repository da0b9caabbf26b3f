package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/intranet/services"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string                `json:"detail"`
	Errors []services.FieldError `json:"errors,omitempty"`
}

// Error writes a JSON error body with the given status code.
func Error(ctx *gin.Context, status int, detail string) {
	ctx.JSON(status, ErrorResponse{Detail: detail})
}

// ValidationFailed writes a 422 with field level detail.
func ValidationFailed(ctx *gin.Context, verr *services.ValidationError) {
	ctx.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Detail: "validation failed",
		Errors: verr.Fields,
	})
}

// Fail maps a service error onto the matching HTTP response.
func Fail(ctx *gin.Context, err error) {
	var nf *services.NotFoundError
	var verr *services.ValidationError
	switch {
	case errors.As(err, &nf):
		Error(ctx, http.StatusNotFound, nf.Error())
	case errors.As(err, &verr):
		ValidationFailed(ctx, verr)
	default:
		Logger.Error("request failed",
			zap.String("request_id", RequestID(ctx)),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(err),
		)
		_ = ctx.Error(err)
		Error(ctx, http.StatusInternalServerError, "internal server error")
	}
}
