package reports

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/pvsim/core/engine"
	"github.com/kilianp07/pvsim/core/model"
)

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Constraint string `json:"constraint,omitempty"`
}

// ErrorResponse is the body of every non 2xx answer.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func abort(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorDetail{
		Code:       code,
		Message:    err.Error(),
		Constraint: model.ConstraintOf(err),
	}})
}

// statusOf maps simulation errors to HTTP status codes.
func statusOf(err error) (int, string) {
	if engine.IsInputError(err) {
		return http.StatusBadRequest, "INVALID_INPUT"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
