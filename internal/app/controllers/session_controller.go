package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/app/services"
	"github.com/campusconnect/campusconnect/internal/middleware"
)

// SessionController handles session commands
type SessionController struct {
	sessionService services.SessionService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService services.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

// CreateSession schedules a session and notifies its audience.
// POST /api/v1/sessions
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req dto.CreateSessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.sessionService.CreateSession(ctx, middleware.UID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.IDResponse{ID: id}, "Session created"))
}

// JoinSession adds the caller to the participants.
// POST /api/v1/sessions/:id/join
func (c *SessionController) JoinSession(ctx *gin.Context) {
	session, err := c.sessionService.JoinSession(ctx, middleware.UID(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session, ""))
}

// LeaveSession removes the caller from the participants.
// POST /api/v1/sessions/:id/leave
func (c *SessionController) LeaveSession(ctx *gin.Context) {
	if err := c.sessionService.LeaveSession(ctx, middleware.UID(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Left session"))
}

// EndSession completes a session. Only its host may end it.
// POST /api/v1/sessions/:id/end
func (c *SessionController) EndSession(ctx *gin.Context) {
	if err := c.sessionService.EndSession(ctx, middleware.UID(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Session ended"))
}

// VideoRoom returns the room URL for the caller.
// GET /api/v1/sessions/:id/room
func (c *SessionController) VideoRoom(ctx *gin.Context) {
	room, err := c.sessionService.VideoRoom(ctx, middleware.UID(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(room, ""))
}
