package polls

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshita2766/planpull-backend/internal/middleware"
	"github.com/Harshita2766/planpull-backend/internal/models"
	"github.com/Harshita2766/planpull-backend/pkg/response"
)

// CreateRequest is the body for POST /polls.
type CreateRequest struct {
	GroupID  int64    `json:"group_id" binding:"required"`
	Question string   `json:"question" binding:"required"`
	Options  []string `json:"options" binding:"required"`
}

// VoteRequest is the body for POST /polls/:id/vote. OptionIndex is a pointer so
// that 0 is distinguishable from a missing field. Both fields are checked by the
// service after the poll lookup.
type VoteRequest struct {
	UserID      string `json:"user_id"`
	OptionIndex *int   `json:"option_index"`
}

// PollResponse is the body for GET /polls/:id.
type PollResponse struct {
	Question string              `json:"question"`
	Options  []models.PollOption `json:"options"`
}

// Handler handles poll HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a polls handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the poll routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/polls", h.Create)
	r.GET("/polls/:id", h.Get)
	r.POST("/polls/:id/vote", h.Vote)
}

// Create handles POST /polls.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid input")
		return
	}
	p, err := h.svc.CreatePoll(c.Request.Context(), req.GroupID, req.Question, req.Options)
	if err != nil {
		middleware.RespondError(c, h.logger, "create poll", err)
		return
	}
	response.Created(c, gin.H{"message": "Poll created", "poll_id": p.ID})
}

// Vote handles POST /polls/:id/vote.
func (h *Handler) Vote(c *gin.Context) {
	pollID, ok := middleware.ParamID(c, "id")
	if !ok {
		response.NotFound(c, "Poll not found")
		return
	}
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid input")
		return
	}
	res, err := h.svc.castVote(c.Request.Context(), pollID, req.UserID, req.OptionIndex)
	if err != nil {
		middleware.RespondError(c, h.logger, "cast vote", err)
		return
	}
	msg := "Vote recorded"
	switch {
	case !res.Changed:
		msg = "Vote unchanged"
	case res.PreviousIndex != nil:
		msg = "Vote changed"
	}
	response.OK(c, gin.H{"message": msg, "options": res.Options})
}

// Get handles GET /polls/:id.
func (h *Handler) Get(c *gin.Context) {
	pollID, ok := middleware.ParamID(c, "id")
	if !ok {
		response.NotFound(c, "Poll not found")
		return
	}
	p, err := h.svc.GetPoll(c.Request.Context(), pollID)
	if err != nil {
		middleware.RespondError(c, h.logger, "get poll", err)
		return
	}
	response.OK(c, PollResponse{Question: p.Question, Options: p.Options})
}
