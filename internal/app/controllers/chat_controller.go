package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusconnect/campusconnect/internal/app/models/dto"
	"github.com/campusconnect/campusconnect/internal/app/services"
	"github.com/campusconnect/campusconnect/internal/middleware"
)

// ChatController handles direct message commands
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{
		chatService: chatService,
	}
}

// OpenChat returns the conversation with another user, creating it on first use.
// POST /api/v1/chats
func (c *ChatController) OpenChat(ctx *gin.Context) {
	var req dto.OpenChatRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	chatID, err := c.chatService.OpenChat(ctx, middleware.UID(ctx), req.UID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.OpenChatResponse{ChatID: chatID}, ""))
}

// SendMessage appends a message to a conversation.
// POST /api/v1/chats/:id/messages
func (c *ChatController) SendMessage(ctx *gin.Context) {
	var req dto.SendMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.chatService.SendMessage(ctx, middleware.UID(ctx), ctx.Param("id"), req.Text); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(nil, "Message sent"))
}

// MarkRead resets the caller's unread counter.
// POST /api/v1/chats/:id/read
func (c *ChatController) MarkRead(ctx *gin.Context) {
	if err := c.chatService.MarkRead(ctx, middleware.UID(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, ""))
}
