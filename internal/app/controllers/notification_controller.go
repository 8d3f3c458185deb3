package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/app/services"
	"github.com/campusconnect/campusconnect/internal/middleware"
)

// NotificationController handles notification commands
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
	}
}

// MarkAllRead marks every unread notification of the caller as read.
// POST /api/v1/notifications/read-all
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	n, err := c.notificationService.MarkAllRead(ctx, middleware.UID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"marked": n}, ""))
}
