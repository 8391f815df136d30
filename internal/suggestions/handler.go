package suggestions

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshita2766/planpull-backend/internal/middleware"
	"github.com/Harshita2766/planpull-backend/pkg/response"
)

// Request is the body for POST /suggestions.
type Request struct {
	Location string `json:"location" binding:"required"`
	Mood     string `json:"mood" binding:"required"`
}

// Handler serves POST /suggestions.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a suggestions handler.
func NewHandler(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger}
}

// Register mounts the suggestion route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/suggestions", h.Suggest)
}

// Suggest handles POST /suggestions.
func (h *Handler) Suggest(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "location and mood are required")
		return
	}
	list, err := Suggest(req.Location, req.Mood)
	if err != nil {
		middleware.RespondError(c, h.logger, "suggest", err)
		return
	}
	response.OK(c, gin.H{"suggestions": list})
}
