// Package server assembles the HTTP router.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harshita2766/planpull-backend/internal/groups"
	"github.com/Harshita2766/planpull-backend/internal/middleware"
	"github.com/Harshita2766/planpull-backend/internal/polls"
	"github.com/Harshita2766/planpull-backend/internal/store"
	"github.com/Harshita2766/planpull-backend/internal/suggestions"
	"github.com/Harshita2766/planpull-backend/pkg/response"
)

// HealthMessage is returned by GET /.
const HealthMessage = "PlanPull backend is running"

// Deps are the collaborators the router needs.
type Deps struct {
	Store store.Store
	// Recorder receives committed vote changes; nil disables the audit trail.
	Recorder           polls.VoteRecorder
	Logger             *zap.Logger
	CORSAllowedOrigins string
}

// NewRouter wires services and handlers onto a gin engine.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	groupSvc := groups.NewService(d.Store, logger)
	pollSvc := polls.NewService(d.Store, groupSvc, d.Recorder, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(d.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/", func(c *gin.Context) { response.OK(c, response.Message{Message: HealthMessage}) })

	groups.NewHandler(groupSvc, logger).Register(router)
	polls.NewHandler(pollSvc, logger).Register(router)
	suggestions.NewHandler(logger).Register(router)

	return router
}
