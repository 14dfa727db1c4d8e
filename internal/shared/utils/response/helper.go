package response

import (
	"net/http"

	"skybook/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a service error onto the HTTP status it belongs to.
func RespondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case apperrors.IsNotFound(err):
		code = http.StatusNotFound
	case apperrors.IsValidation(err):
		code = http.StatusBadRequest
	case apperrors.IsCapacityConflict(err):
		code = http.StatusConflict
	case apperrors.IsAuthorization(err):
		code = http.StatusForbidden
	}
	RespondJSON(c, "error", code, err.Error(), nil, nil)
}
