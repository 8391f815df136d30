package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshita2766/planpull-backend/internal/apperrors"
	"github.com/Harshita2766/planpull-backend/pkg/response"
)

// RespondError writes err as a JSON error. Validation and not-found errors carry
// their own message; anything else is logged and reported as a 500.
func RespondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error(op,
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(ContextRequestID)),
		)
		response.Internal(c, "Internal server error")
		return
	}
	response.Error(c, status, err.Error())
}

// ParamID parses a positive integer path parameter. ok is false when the value
// cannot name a stored record.
func ParamID(c *gin.Context, name string) (id int64, ok bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
