package groups

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshita2766/planpull-backend/internal/middleware"
	"github.com/Harshita2766/planpull-backend/pkg/response"
)

// CreateRequest is the body for POST /groups.
type CreateRequest struct {
	Name    string   `json:"name" binding:"required"`
	Creator string   `json:"creator" binding:"required"`
	Members []string `json:"members"`
}

// AddMembersRequest is the body for POST /groups/:id/members.
type AddMembersRequest struct {
	Members []string `json:"members" binding:"required"`
}

// Handler handles group HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a groups handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the group routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/groups", h.Create)
	r.GET("/groups/:id", h.Get)
	r.POST("/groups/:id/members", h.AddMembers)
}

// Create handles POST /groups.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid input")
		return
	}
	g, err := h.svc.CreateGroup(c.Request.Context(), req.Name, req.Creator, req.Members)
	if err != nil {
		middleware.RespondError(c, h.logger, "create group", err)
		return
	}
	response.Created(c, gin.H{"message": "Group created", "group_id": g.ID})
}

// Get handles GET /groups/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		response.NotFound(c, "Group not found")
		return
	}
	g, err := h.svc.GetGroup(c.Request.Context(), id)
	if err != nil {
		middleware.RespondError(c, h.logger, "get group", err)
		return
	}
	response.OK(c, g)
}

// AddMembers handles POST /groups/:id/members.
func (h *Handler) AddMembers(c *gin.Context) {
	id, ok := middleware.ParamID(c, "id")
	if !ok {
		response.NotFound(c, "Group not found")
		return
	}
	var req AddMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid input")
		return
	}
	g, err := h.svc.AddMembers(c.Request.Context(), id, req.Members)
	if err != nil {
		middleware.RespondError(c, h.logger, "add group members", err)
		return
	}
	response.OK(c, gin.H{"message": "Members added", "members": g.Members})
}
